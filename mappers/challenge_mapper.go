package mappers

import (
	"NovaCTF/config"
	"NovaCTF/dto"
	"NovaCTF/models"
)

// ToChallengeItemResp 列表项映射，current_score 按当前解出数实时计算
func ToChallengeItemResp(ch *models.Challenge, solvedCount int64) dto.ChallengeItemResp {
	return dto.ChallengeItemResp{
		ID:            ch.ID,
		ChallengeName: ch.ChallengeName,
		Category:      ch.Category,
		Mode:          string(ch.Mode),
		ScoringModel:  string(ch.ScoringModel),
		CurrentScore:  ch.CurrentPoints(int(solvedCount), config.C.MinPointsFloor),
		SolvedCount:   solvedCount,
		Released:      ch.ReleasedAt != nil,
	}
}

// ToChallengeDetailResp 详情映射
func ToChallengeDetailResp(ch *models.Challenge, solvedCount int64) dto.ChallengeDetailResp {
	resp := dto.ChallengeDetailResp{
		ID:            ch.ID,
		ChallengeName: ch.ChallengeName,
		Category:      ch.Category,
		Author:        ch.Author,
		Description:   ch.Description,
		Hint:          ch.Hint,
		Mode:          string(ch.Mode),
		ScoringModel:  string(ch.ScoringModel),
		CurrentScore:  ch.CurrentPoints(int(solvedCount), config.C.MinPointsFloor),
		SolvedCount:   solvedCount,
		Released:      ch.ReleasedAt != nil,
	}
	if ch.Mode != models.ModeJeopardy {
		resp.TickSeconds = ch.TickSeconds
	}
	return resp
}

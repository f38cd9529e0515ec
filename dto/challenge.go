package dto

import "strings"

// ========== 请求 DTO ==========

type CreateChallengeReq struct {
	// 规范字段（snake_case）
	ChallengeName string  `json:"challenge_name"`
	Category      string  `json:"category"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Hint          string  `json:"hint"`
	Mode          string  `json:"mode"`          // jeopardy / attack_defense / koth
	ScoringModel  string  `json:"scoring_model"` // static / dynamic
	Flag          string  `json:"flag"`          // 明文 Flag，入库前转 HMAC
	PointsMin     int     `json:"points_min"`
	PointsMax     int     `json:"points_max"`
	DecayK        float64 `json:"decay_k"`
	TickSeconds   uint    `json:"tick_seconds"`
	CheckerConfig string  `json:"checker_config"`
	Image         string  `json:"image"`
	Ports         string  `json:"ports"`

	// 仅用于兼容旧客户端（camelCase 变体）
	ChallengeNameCamel string `json:"challengeName"`
	ScoringModelCamel  string `json:"scoringModel"`
	PointsMinCamel     int    `json:"pointsMin"`
	PointsMaxCamel     int    `json:"pointsMax"`
	TickSecondsCamel   uint   `json:"tickSeconds"`
}

// Normalize 将 camelCase 别名归一化到 snake_case，并做轻量默认值处理
func (r *CreateChallengeReq) Normalize() {
	if r.ChallengeName == "" && r.ChallengeNameCamel != "" {
		r.ChallengeName = r.ChallengeNameCamel
	}
	if r.ScoringModel == "" && r.ScoringModelCamel != "" {
		r.ScoringModel = r.ScoringModelCamel
	}
	if r.PointsMin == 0 && r.PointsMinCamel != 0 {
		r.PointsMin = r.PointsMinCamel
	}
	if r.PointsMax == 0 && r.PointsMaxCamel != 0 {
		r.PointsMax = r.PointsMaxCamel
	}
	if r.TickSeconds == 0 && r.TickSecondsCamel != 0 {
		r.TickSeconds = r.TickSecondsCamel
	}

	r.ChallengeName = strings.TrimSpace(r.ChallengeName)
	r.Author = strings.TrimSpace(r.Author)
	r.Description = strings.TrimSpace(r.Description)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	r.ScoringModel = strings.ToLower(strings.TrimSpace(r.ScoringModel))

	if r.Mode == "" {
		r.Mode = "jeopardy"
	}
	if r.ScoringModel == "" {
		r.ScoringModel = "static"
	}
	if r.PointsMin == 0 {
		r.PointsMin = 50
	}
	if r.PointsMax == 0 {
		r.PointsMax = 500
	}
	if r.DecayK == 0 {
		r.DecayK = 0.018
	}
	if r.TickSeconds == 0 {
		r.TickSeconds = 60
	}
}

type UpdateChallengeReq struct {
	State         *string  `json:"state"` // visible/hidden
	Hint          *string  `json:"hint"`
	Description   *string  `json:"description"`
	PointsMin     *int     `json:"points_min"`
	PointsMax     *int     `json:"points_max"`
	DecayK        *float64 `json:"decay_k"`
	TickSeconds   *uint    `json:"tick_seconds"`
	CheckerConfig *string  `json:"checker_config"`
	// Release 为 true 时以当前时间开放题目（开放后 Tick 计时起点即确定）
	Release *bool `json:"release"`
}

type SubmitFlagReq struct {
	Flag string `json:"flag"`
}

func (r *SubmitFlagReq) Normalize() {
	r.Flag = strings.TrimSpace(r.Flag)
}

type SnapshotReq struct {
	Reason string `json:"reason"` // freeze / moderation / manual
}

// ========== 响应 DTO ==========

type ChallengeItemResp struct {
	ID            uint32 `json:"id"`
	ChallengeName string `json:"challenge_name"`
	Category      string `json:"category"`
	Mode          string `json:"mode"`
	ScoringModel  string `json:"scoring_model"`
	CurrentScore  int    `json:"current_score"`
	SolvedCount   int64  `json:"solved_count"`
	Released      bool   `json:"released"`
}

type ChallengeDetailResp struct {
	ID            uint32 `json:"id"`
	ChallengeName string `json:"challenge_name"`
	Category      string `json:"category"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	Hint          string `json:"hint,omitempty"`
	Mode          string `json:"mode"`
	ScoringModel  string `json:"scoring_model"`
	TickSeconds   uint   `json:"tick_seconds,omitempty"`
	CurrentScore  int    `json:"current_score"`
	SolvedCount   int64  `json:"solved_count"`
	Released      bool   `json:"released"`
}

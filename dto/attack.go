package dto

import "strings"

type SubmitTokenReq struct {
	Token string `json:"token"`
}

func (r *SubmitTokenReq) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
}

type SpawnInstanceReq struct {
	ChallengeID uint32 `json:"challenge_id" binding:"required"`
	Image       string `json:"image"`
	Ports       string `json:"ports"` // 形如 "80,3306"
}

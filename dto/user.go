package dto

import "strings"

type RegisterReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
}

func (r *RegisterReq) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateTeamReq struct {
	TeamName     string `json:"team_name" binding:"required"`
	TeamDescribe string `json:"team_describe"`
}

func (r *CreateTeamReq) Normalize() {
	r.TeamName = strings.TrimSpace(r.TeamName)
}

type JoinTeamReq struct {
	InvitationCode string `json:"invitation_code" binding:"required"`
}

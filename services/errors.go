package services

import "errors"

// 业务错误哨兵，控制器通过 errors.Is 映射到响应码
var (
	ErrChallengeNotFound = errors.New("题目不存在")
	ErrChallengeHidden   = errors.New("题目不可见")
	ErrNotReleased       = errors.New("题目尚未开放")
	ErrNoTeam            = errors.New("你尚未加入队伍")
	ErrTeamBanned        = errors.New("队伍已被封禁")
	ErrWrongMode         = errors.New("题目模式不支持该操作")
	ErrInvalidToken      = errors.New("无效的防御令牌")
	ErrSelfAttack        = errors.New("不能提交本队的防御令牌")
	ErrTokenExpired      = errors.New("防御令牌已过期")
	ErrTokenUsed         = errors.New("防御令牌已被使用")
	ErrInstanceNotFound  = errors.New("实例不存在")
	ErrNotYourInstance   = errors.New("只能操作本队的实例")
)

package models

import (
	"encoding/json"
	"math"
	"time"
)

type ChallengeState string
type ChallengeMode string
type ScoringModel string

const (
	ChallengeStateVisible ChallengeState = "visible"
	ChallengeStateHidden  ChallengeState = "hidden"

	ModeJeopardy      ChallengeMode = "jeopardy"
	ModeAttackDefense ChallengeMode = "attack_defense"
	ModeKotH          ChallengeMode = "koth"

	ScoringStatic  ScoringModel = "static"
	ScoringDynamic ScoringModel = "dynamic"
)

type Challenge struct {
	ID            uint32         `gorm:"primarykey"`
	ChallengeName string         `gorm:"size:100;unique;not null"`
	Category      string         `gorm:"size:50"`
	Author        string         `gorm:"size:50;not null"`
	Description   string         `gorm:"type:text;not null"`
	Hint          string         `gorm:"type:text"`
	State         ChallengeState `gorm:"size:16;default:'hidden'"`
	Mode          ChallengeMode  `gorm:"size:32;not null;default:'jeopardy'"`
	ScoringModel  ScoringModel   `gorm:"size:16;not null;default:'static'"`
	PointsMin     int            `gorm:"not null;default:50"`
	PointsMax     int            `gorm:"not null;default:500"`
	// DecayK 每增加一个解出队伍，动态分按 e^(-k) 衰减
	DecayK      float64    `gorm:"default:0.018"`
	FlagHmac    string     `gorm:"size:64"` // sha256 hex
	TickSeconds uint       `gorm:"default:60"`
	ReleasedAt  *time.Time `gorm:"index"`
	// CheckerConfig 检查器的自由配置（JSON 串），见 CheckerConf
	CheckerConfig    string `gorm:"type:text"`
	InstanceRequired bool   `gorm:"default:false"`
	// Image/Ports 实例编排用的镜像与发布端口（形如 "80,3306"）
	Image     string `gorm:"size:255"`
	Ports     string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Challenge) TableName() string {
	return "novactf_challenge"
}

// CurrentPoints 计算当前解出可得的分数。
// 静态题恒为 PointsMax；动态题随 solvesBefore 指数衰减，
// floor 为全局配置的计分下限常量（区别于题目自身的 PointsMin）。
func (c *Challenge) CurrentPoints(solvesBefore int, floor int) int {
	if c.ScoringModel == ScoringStatic {
		return c.PointsMax
	}
	pts := int(float64(floor) + (float64(c.PointsMax)-float64(floor))*math.Exp(-c.DecayK*float64(solvesBefore)))
	if pts < c.PointsMin {
		return c.PointsMin
	}
	return pts
}

// CheckerConf 对应 CheckerConfig 字段的结构化表示
type CheckerConf struct {
	Checker           string `json:"checker"`
	HealthPath        string `json:"health_path"`
	ProofPath         string `json:"proof_path"`
	ProofKeyword      string `json:"proof_keyword"`
	ADDefensePoints   int    `json:"ad_defense_points"`
	ADAttackPoints    int    `json:"ad_attack_points"`
	KothPointsPerTick int    `json:"koth_points_per_tick"`
}

// CheckerConf 解析检查器配置并填充默认值，非法 JSON 按空配置处理
func (c *Challenge) CheckerConf() CheckerConf {
	var conf CheckerConf
	if c.CheckerConfig != "" {
		_ = json.Unmarshal([]byte(c.CheckerConfig), &conf)
	}
	if conf.ProofKeyword == "" {
		conf.ProofKeyword = "owned_by:"
	}
	if conf.ADDefensePoints == 0 {
		conf.ADDefensePoints = 5
	}
	if conf.ADAttackPoints == 0 {
		conf.ADAttackPoints = 100
	}
	if conf.KothPointsPerTick == 0 {
		conf.KothPointsPerTick = 5
	}
	return conf
}

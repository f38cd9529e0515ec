package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
	"gorm.io/gorm"
)

// 调度游标：每题最后已派发的 Tick 序号，丢失可从 RoundTick 重建
func tickCursorKey(challengeID uint32) string {
	return fmt.Sprintf("tick:last:%d", challengeID)
}

var (
	tickMu       sync.Mutex
	tickInFlight = map[uint32]bool{}
)

// StartTickScheduler 启动调度循环：固定周期扫描所有非 Jeopardy 题目，
// 为每道题补发所有到期未处理的 Tick。随 ctx 取消而退出。
func StartTickScheduler(ctx context.Context) {
	interval := time.Duration(config.C.SchedulerIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	log.Printf("Tick scheduler started, scan interval %s", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Tick scheduler stopped.")
				return
			case now := <-ticker.C:
				ScanChallenges(now)
			}
		}
	}()
}

// ScanChallenges 单次调度扫描。不同题目并行处理，
// 同一题目在上一轮未完成时跳过本轮，保证题内 Tick 严格有序。
func ScanChallenges(now time.Time) {
	var challenges []models.Challenge
	err := database.DB.
		Where("mode <> ? AND released_at IS NOT NULL AND released_at <= ? AND tick_seconds > 0",
			models.ModeJeopardy, now).
		Find(&challenges).Error
	if err != nil {
		log.Printf("Tick scan query failed: %v", err)
		return
	}

	for i := range challenges {
		ch := challenges[i]

		tickMu.Lock()
		if tickInFlight[ch.ID] {
			tickMu.Unlock()
			continue
		}
		tickInFlight[ch.ID] = true
		tickMu.Unlock()

		go func() {
			defer func() {
				tickMu.Lock()
				delete(tickInFlight, ch.ID)
				tickMu.Unlock()
			}()
			ProcessChallengeTicks(&ch, now)
		}()
	}
}

// ProcessChallengeTicks 补发单道题目从游标到当前时刻的全部 Tick，升序逐个执行。
// 单个 Tick 失败只记日志，不中断后续 Tick。
func ProcessChallengeTicks(ch *models.Challenge, now time.Time) {
	currentTick := int64(now.Sub(*ch.ReleasedAt) / (time.Duration(ch.TickSeconds) * time.Second))
	if currentTick < 0 {
		return
	}

	last := lastDispatchedTick(ch)
	if currentTick <= last {
		return
	}

	for t := last + 1; t <= currentTick; t++ {
		if err := RunTick(ch.ID, t); err != nil {
			log.Printf("Tick %d for challenge %d failed: %v", t, ch.ID, err)
		}
	}

	setDispatchedTick(ch, currentTick)
}

// lastDispatchedTick 读取调度游标。缓存未命中时从 RoundTick 表重建；
// 两者都没有则从 -1 起步。游标只是加速手段，丢失不影响正确性。
func lastDispatchedTick(ch *models.Challenge) int64 {
	if val, err := database.RDB.Get(database.Ctx, tickCursorKey(ch.ID)).Result(); err == nil {
		if last, err := strconv.ParseInt(val, 10, 64); err == nil {
			return last
		}
	}

	var max *int64
	database.DB.Model(&models.RoundTick{}).
		Where("challenge_id = ?", ch.ID).
		Select("MAX(tick_index)").Scan(&max)
	if max != nil {
		return *max
	}
	return -1
}

func setDispatchedTick(ch *models.Challenge, tick int64) {
	ttl := time.Duration(ch.TickSeconds) * time.Second * 5
	database.RDB.Set(database.Ctx, tickCursorKey(ch.ID), strconv.FormatInt(tick, 10), ttl)
}

// RunTick 执行一次 (challenge, tick)。先抢占 RoundTick 幂等键，
// 抢不到说明该 Tick 已处理过，直接空操作返回。
func RunTick(challengeID uint32, tickIndex int64) error {
	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		return ErrChallengeNotFound
	}

	round := &models.RoundTick{
		ChallengeID: challengeID,
		TickIndex:   tickIndex,
		StartedAt:   time.Now(),
	}
	if err := database.DB.Create(round).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	switch challenge.Mode {
	case models.ModeAttackDefense:
		runADTick(&challenge, tickIndex)
	case models.ModeKotH:
		runKothTick(&challenge, tickIndex)
	}

	// 检查器的网络错误都在分支内消化，Tick 一定记为完成
	now := time.Now()
	return database.DB.Model(round).Update("finished_at", now).Error
}

// runADTick AD 分支：并发探测每个运行中的实例，在线即发防御分并铸造令牌
func runADTick(challenge *models.Challenge, tickIndex int64) {
	conf := challenge.CheckerConf()
	checker := GetChecker(conf)

	var instances []models.TeamServiceInstance
	database.DB.
		Where("challenge_id = ? AND status = ?", challenge.ID, models.InstanceRunning).
		Find(&instances)
	if len(instances) == 0 {
		return
	}

	// 探测相互独立：单个实例的慢探测不阻塞同 Tick 的其他队伍
	healthy := make([]bool, len(instances))
	var wg sync.WaitGroup
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			healthy[i] = checker.HealthOK(&instances[i], conf)
		}(i)
	}
	wg.Wait()

	scoreChanged := false
	for i := range instances {
		inst := &instances[i]
		now := time.Now()
		database.DB.Model(inst).Update("last_check_at", now)
		if !healthy[i] {
			continue
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			meta, _ := json.Marshal(map[string]interface{}{"tick": tickIndex})
			if err := tx.Create(&models.ScoreEvent{
				TeamID:      inst.TeamID,
				ChallengeID: &challenge.ID,
				Type:        models.ScoreTypeADDefenseUptime,
				Delta:       conf.ADDefensePoints,
				Metadata:    string(meta),
				CreatedAt:   now,
			}).Error; err != nil {
				return err
			}
			_, err := MintDefenseToken(tx, inst.TeamID, challenge, &inst.ID, tickIndex)
			return err
		})
		if err != nil {
			log.Printf("AD award failed for team %d challenge %d tick %d: %v",
				inst.TeamID, challenge.ID, tickIndex, err)
			continue
		}
		scoreChanged = true
	}

	BroadcastADStatus(challenge.ID)
	if scoreChanged {
		BroadcastLeaderboard()
	}
}

// runKothTick KotH 分支：探测占领方，计占领分并推进占领状态机。
// 未检测到占领方时不给分也不转移，既有开放区间保持原状。
func runKothTick(challenge *models.Challenge, tickIndex int64) {
	conf := challenge.CheckerConf()
	checker := GetChecker(conf)

	var instances []models.TeamServiceInstance
	database.DB.
		Where("challenge_id = ? AND status = ?", challenge.ID, models.InstanceRunning).
		Find(&instances)

	ownerTeamID, found := checker.KothOwner(instances, conf)
	if !found {
		return
	}

	var changed *models.OwnershipEvent
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		meta, _ := json.Marshal(map[string]interface{}{"tick": tickIndex})
		if err := tx.Create(&models.ScoreEvent{
			TeamID:      ownerTeamID,
			ChallengeID: &challenge.ID,
			Type:        models.ScoreTypeKothHold,
			Delta:       conf.KothPointsPerTick,
			Metadata:    string(meta),
			CreatedAt:   now,
		}).Error; err != nil {
			return err
		}
		var err error
		changed, err = ReconcileOwnership(tx, challenge.ID, ownerTeamID, now, conf.KothPointsPerTick)
		return err
	})
	if err != nil {
		log.Printf("KotH award failed for challenge %d tick %d: %v", challenge.ID, tickIndex, err)
		return
	}

	if changed != nil {
		BroadcastKothUpdate(changed)
	}
	BroadcastLeaderboard()
}

package services

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
)

// Checker 检查器接口：AD 模式探测服务是否在线，KotH 模式探测当前占领方。
// 探测失败（网络错误、超时）一律按"不在线/无占领方"处理，绝不向上抛错。
type Checker interface {
	HealthOK(inst *models.TeamServiceInstance, conf models.CheckerConf) bool
	KothOwner(insts []models.TeamServiceInstance, conf models.CheckerConf) (uint32, bool)
}

var checkerRegistry = map[string]Checker{}

// RegisterChecker 注册命名检查器实现
func RegisterChecker(name string, c Checker) {
	checkerRegistry[name] = c
}

// GetChecker 按配置选择检查器，未配置或名字未注册时回退到默认 HTTP 检查器
func GetChecker(conf models.CheckerConf) Checker {
	if conf.Checker != "" {
		if c, ok := checkerRegistry[conf.Checker]; ok {
			return c
		}
		log.Printf("Unknown checker %q, falling back to http", conf.Checker)
	}
	return checkerRegistry["http"]
}

func init() {
	RegisterChecker("http", &HTTPChecker{})
}

// HTTPChecker 默认 HTTP 探测实现：
// 健康检查 GET endpoint+health_path 返回 200 即在线；
// 占领检测 GET endpoint+proof_path，解析 proof_keyword 后跟的队伍 ID，
// 无关键字匹配时回退为"第一个返回 200 的实例的队伍"。
type HTTPChecker struct{}

func (h *HTTPChecker) httpGet(url string) (int, string) {
	client := &http.Client{Timeout: time.Duration(config.C.ProbeTimeoutSeconds) * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, ""
	}
	defer resp.Body.Close()
	// 队伍服务不可信，限制读取体积
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, string(body)
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (h *HTTPChecker) HealthOK(inst *models.TeamServiceInstance, conf models.CheckerConf) bool {
	if inst.EndpointURL == "" {
		return false
	}
	status, _ := h.httpGet(joinURL(inst.EndpointURL, conf.HealthPath))
	return status == http.StatusOK
}

func (h *HTTPChecker) KothOwner(insts []models.TeamServiceInstance, conf models.CheckerConf) (uint32, bool) {
	for i := range insts {
		inst := &insts[i]
		if inst.EndpointURL == "" {
			continue
		}
		status, body := h.httpGet(joinURL(inst.EndpointURL, conf.ProofPath))
		now := time.Now()
		inst.LastCheckAt = &now
		database.DB.Model(inst).Update("last_check_at", now)
		if status != http.StatusOK {
			continue
		}
		if idx := strings.Index(body, conf.ProofKeyword); idx >= 0 {
			rest := strings.Fields(strings.TrimSpace(body[idx+len(conf.ProofKeyword):]))
			if len(rest) > 0 {
				if tid, err := strconv.ParseUint(rest[0], 10, 32); err == nil && uint32(tid) == inst.TeamID {
					return inst.TeamID, true
				}
			}
		}
		// 证明页可达但无有效关键字，按服务归属方占领处理
		return inst.TeamID, true
	}
	return 0, false
}

package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/utils"
	"github.com/docker/docker/api/types"
	imagetypes "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"
)

// 实例编排器：为 AD/KotH 题目拉起队伍服务实例。
// Tick 引擎对编排方式无感知，只消费 TeamServiceInstance 行；
// Docker 关闭时实例落库为 pending，由外部编排系统接管。

var DockerClient *client.Client

// InitDocker 初始化 Docker 客户端并检查 Swarm 状态
func InitDocker() {
	var err error
	DockerClient, err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatalf("Failed to connect to Docker daemon: %v", err)
	}

	info, err := DockerClient.Info(context.Background())
	if err != nil {
		log.Fatalf("Failed to get Docker info: %v", err)
	}

	if info.Swarm.LocalNodeState != swarm.LocalNodeStateActive {
		log.Fatalf("Docker is not running in Swarm mode. Please run 'docker swarm init'.")
	}

	log.Println("Docker client initialized and connected to Swarm cluster.")
}

// ensureImage 确保镜像在 Swarm 集群中可用
func ensureImage(ctx context.Context, ref string) error {
	pullCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	rc, err := DockerClient.ImagePull(pullCtx, ref, imagetypes.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %q: %w", ref, err)
	}
	defer rc.Close()
	_, _ = io.Copy(io.Discard, rc)
	return nil
}

// ProvisionInstance 为队伍创建服务实例。
// Docker 开启时在 Swarm 中创建服务并回填端点，否则只落 pending 行。
func ProvisionInstance(team *models.Team, challenge *models.Challenge, image string, ports string) (*models.TeamServiceInstance, error) {
	inst := &models.TeamServiceInstance{
		TeamID:      team.ID,
		ChallengeID: challenge.ID,
		Status:      models.InstancePending,
		CreatedAt:   time.Now(),
	}

	if !config.C.DockerEnabled {
		if err := database.DB.Create(inst).Error; err != nil {
			return nil, err
		}
		return inst, nil
	}

	ctx := context.Background()
	serviceName := fmt.Sprintf("ad-%d-%d-%s", team.ID, challenge.ID, utils.GenerateServiceSuffix())

	if err := ensureImage(ctx, image); err != nil {
		log.Printf("Warning: %v, continuing with node-local image", err)
	}

	var portConfigs []swarm.PortConfig
	for _, p := range strings.Split(ports, ",") {
		port, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			log.Printf("Warning: Invalid port format '%s' for challenge %d", p, challenge.ID)
			continue
		}
		portConfigs = append(portConfigs, swarm.PortConfig{
			Protocol:    swarm.PortConfigProtocolTCP,
			TargetPort:  uint32(port),
			PublishMode: swarm.PortConfigPublishModeIngress, // 随机发布端口
		})
	}

	serviceSpec := swarm.ServiceSpec{
		Annotations: swarm.Annotations{
			Name: serviceName,
		},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{
				Image: image,
				Env:   []string{fmt.Sprintf("NOVACTF_TEAM_ID=%d", team.ID)},
			},
			Resources: &swarm.ResourceRequirements{
				Limits: &swarm.Limit{
					MemoryBytes: 256 * 1024 * 1024, // 限制内存 256MB
					NanoCPUs:    500000000,         // 限制 CPU 0.5 Core
				},
			},
		},
		EndpointSpec: &swarm.EndpointSpec{
			Ports: portConfigs,
		},
	}

	serviceResp, err := DockerClient.ServiceCreate(ctx, serviceSpec, types.ServiceCreateOptions{})
	if err != nil {
		return nil, err
	}

	inst.ServiceID = serviceResp.ID
	inst.Status = models.InstanceRunning
	inst.EndpointURL = deriveEndpointURL(serviceResp.ID)

	if err := database.DB.Create(inst).Error; err != nil {
		// 数据库落库失败时回收已创建的服务
		_ = DockerClient.ServiceRemove(ctx, serviceResp.ID)
		return nil, err
	}
	return inst, nil
}

// deriveEndpointURL 通过服务发布端口推导实例访问地址
func deriveEndpointURL(serviceID string) string {
	service, _, err := DockerClient.ServiceInspectWithRaw(context.Background(), serviceID, types.ServiceInspectOptions{})
	if err != nil {
		log.Printf("Warning: failed to inspect service %s to get port mapping: %v", serviceID, err)
		return ""
	}
	for _, port := range service.Endpoint.Ports {
		return fmt.Sprintf("http://%s:%d", config.C.SwarmNodeIP, port.PublishedPort)
	}
	return ""
}

// StopInstance 停止实例：销毁底层服务并把状态落为 stopped
func StopInstance(inst *models.TeamServiceInstance) error {
	if config.C.DockerEnabled && inst.ServiceID != "" {
		if err := DockerClient.ServiceRemove(context.Background(), inst.ServiceID); err != nil {
			log.Printf("Warning: failed to remove service %s: %v", inst.ServiceID, err)
		}
	}
	return database.DB.Model(inst).Update("status", models.InstanceStopped).Error
}

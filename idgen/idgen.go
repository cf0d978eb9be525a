// Package idgen 为请求与求解任务生成全局唯一编号，底层可选 Snowflake 或 Sonyflake。
package idgen

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sony/sonyflake"

	"github.com/wyfcoding/simplex/config"
)

var (
	ErrUnsupportedType  = errors.New("unsupported id generator type")
	ErrParseTime        = errors.New("failed to parse start time")
	ErrCreateNode       = errors.New("failed to create id generator")
	ErrInvalidMachineID = errors.New("machine_id must be between 0 and 65535")
)

// Kind 编号前缀，区分编号的用途。
type Kind string

const (
	KindRequest Kind = ""  // 请求 ID 保持纯数字，便于与上游透传的 ID 混用
	KindSolve   Kind = "S" // 单次求解
)

// Generator 产生单调递增的正整数 ID。
type Generator interface {
	Generate() int64
}

var defaultEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func epoch(cfg config.SnowflakeConfig) (time.Time, error) {
	if cfg.StartTime == "" {
		return defaultEpoch, nil
	}
	st, err := time.Parse(time.DateOnly, cfg.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrParseTime, err)
	}
	return st, nil
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

func (g *snowflakeGenerator) Generate() int64 {
	return g.node.Generate().Int64()
}

// snowflake.Epoch 是包级变量，整个进程只能有一个纪元。
func newSnowflake(cfg config.SnowflakeConfig, start time.Time) (Generator, error) {
	snowflake.Epoch = start.UnixMilli()
	node, err := snowflake.NewNode(cfg.MachineID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateNode, err)
	}
	return &snowflakeGenerator{node: node}, nil
}

type sonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

const sonyflakeRetries = 3

// Generate 在时钟回拨等错误时短暂重试，仍失败则返回 0。
func (g *sonyflakeGenerator) Generate() int64 {
	for i := range sonyflakeRetries {
		id, err := g.sf.NextID()
		if err == nil {
			return int64(id & 0x7FFFFFFFFFFFFFFF)
		}
		slog.Warn("sonyflake generate failed, retrying", "retry", i+1, "error", err)
		time.Sleep(10 * time.Millisecond)
	}
	slog.Error("sonyflake generate failed after retries")
	return 0
}

func newSonyflake(cfg config.SnowflakeConfig, start time.Time) (Generator, error) {
	if cfg.MachineID < 0 || cfg.MachineID > 65535 {
		return nil, ErrInvalidMachineID
	}
	machineID := uint16(cfg.MachineID)
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: start,
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateNode, err)
	}
	return &sonyflakeGenerator{sf: sf}, nil
}

// NewGenerator 按配置创建生成器，Type 为空时使用 snowflake。
func NewGenerator(cfg config.SnowflakeConfig) (Generator, error) {
	start, err := epoch(cfg)
	if err != nil {
		return nil, err
	}

	var g Generator
	switch cfg.Type {
	case "", "snowflake":
		g, err = newSnowflake(cfg, start)
	case "sonyflake":
		g, err = newSonyflake(cfg, start)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("id generator initialized", "type", cfg.Type, "machine_id", cfg.MachineID, "epoch", start.Format(time.DateOnly))
	return g, nil
}

var (
	mu      sync.RWMutex
	current Generator
)

// Init 按配置替换全局生成器。失败时保留原生成器。
func Init(cfg config.SnowflakeConfig) error {
	g, err := NewGenerator(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	current = g
	mu.Unlock()
	return nil
}

// Default 返回全局生成器，未初始化时以机器号 1 的 snowflake 惰性创建。
func Default() Generator {
	mu.RLock()
	g := current
	mu.RUnlock()
	if g != nil {
		return g
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		g, err := NewGenerator(config.SnowflakeConfig{MachineID: 1})
		if err != nil {
			panic(fmt.Errorf("idgen: default generator: %w", err))
		}
		current = g
	}
	return current
}

// Next 生成一个带前缀的编号。
func Next(kind Kind) string {
	return string(kind) + strconv.FormatInt(Default().Generate(), 10)
}

// GenIDString 生成请求 ID。
func GenIDString() string {
	return Next(KindRequest)
}

// GenSolveID 生成求解编号，格式为 "S" + 十进制 ID。
func GenSolveID() string {
	return Next(KindSolve)
}

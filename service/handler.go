package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/response"
	"github.com/wyfcoding/simplex/xerrors"
)

// BatchRequest 批量求解请求体。
type BatchRequest struct {
	Problems []*lpfile.Document `json:"problems"`
}

// Handler 暴露求解服务的 HTTP 接口。
type Handler struct {
	svc    *Service
	health func() error
}

// NewHandler 创建 HTTP 处理器，health 为 nil 时健康检查总是成功。
func NewHandler(svc *Service, health func() error) *Handler {
	return &Handler{svc: svc, health: health}
}

// Register 注册路由。
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.healthz)
	v1 := r.Group("/v1")
	v1.POST("/solve", h.solve)
	v1.POST("/solve/batch", h.solveBatch)
}

func (h *Handler) solve(c *gin.Context) {
	var doc lpfile.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		response.Error(c, lpfile.ErrDecode.Detailf("%v", err))
		return
	}

	res, err := h.svc.Solve(c.Request.Context(), &doc)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (h *Handler) solveBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, lpfile.ErrDecode.Detailf("%v", err))
		return
	}

	items, err := h.svc.SolveBatch(c.Request.Context(), req.Problems)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(); err != nil {
			response.Error(c, xerrors.New(xerrors.ErrUnavailable, http.StatusServiceUnavailable, "unhealthy", err.Error(), err))
			return
		}
	}
	response.SuccessWithRawData(c, gin.H{"status": "ok"})
}

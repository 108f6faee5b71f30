package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"pharma-triage/internal/app/middleware"
	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/domain/services"
	"pharma-triage/internal/eino/flows"
	"pharma-triage/pkg/logger"
	"pharma-triage/pkg/status"
)

// PredictRequest 分诊请求体。age 用指针区分缺失与 0，symptoms 元素用指针拒绝 null
type PredictRequest struct {
	Age      *int      `json:"age" binding:"required,min=0,max=120"`
	Symptoms []*string `json:"symptoms" binding:"required,dive,required"`
}

func (r *PredictRequest) symptoms() []string {
	out := make([]string, len(r.Symptoms))
	for i, s := range r.Symptoms {
		out[i] = *s
	}
	return out
}

// ReadinessInfo 启动时加载的制品概况
type ReadinessInfo struct {
	VocabularySize      int    `json:"vocabulary_size"`
	Classes             int    `json:"classes"`
	ConfidenceSupport   bool   `json:"confidence_support"`
	ArtifactSource      string `json:"artifact_source"`
	ConflictingDiseases int    `json:"conflicting_diseases"`
}

// StatsFunc 返回运行期统计
type StatsFunc func() map[string]interface{}

// TriageHandler 分诊处理器
type TriageHandler struct {
	service   services.TriageService
	readiness ReadinessInfo
	stats     StatsFunc
	logger    logger.Logger
}

// NewTriageHandler 创建分诊处理器，stats 可以为 nil
func NewTriageHandler(service services.TriageService, readiness ReadinessInfo, stats StatsFunc, log logger.Logger) *TriageHandler {
	return &TriageHandler{
		service:   service,
		readiness: readiness,
		stats:     stats,
		logger:    log,
	}
}

// Predict 执行分诊
// POST /predict
func (h *TriageHandler) Predict(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := middleware.GetRequestID(c)

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithDetail(c, status.ErrCodePayloadTooLarge.HTTPStatus(),
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}

		h.logger.InfoContext(ctx, "分诊请求参数校验失败", "request_id", requestID, "error", err.Error())
		respondWithDetail(c, status.ErrCodeInvalidParam.HTTPStatus(), validationDetails(err))
		return
	}

	result, err := h.service.Handle(ctx, &models.TriageRequest{
		Age:      *req.Age,
		Symptoms: req.symptoms(),
	})
	if err != nil {
		if errors.Is(err, flows.ErrAgeOutOfRange) {
			respondWithDetail(c, status.ErrCodeInvalidParam.HTTPStatus(), []ValidationDetail{{
				Loc:  []string{"body", "age"},
				Msg:  err.Error(),
				Type: "value_error",
			}})
			return
		}

		h.logger.ErrorContext(ctx, "分诊请求处理失败", "request_id", requestID, "error", err.Error())
		respondWithError(c, status.ErrCodeInternal, "分诊失败", err.Error())
		return
	}

	h.logger.InfoContext(ctx, "分诊请求处理完成",
		"request_id", requestID,
		"category", result.Category,
		"used_fallback", result.UsedFallback,
	)

	c.JSON(http.StatusOK, result)
}

// Health 存活检查
// GET /health
func (h *TriageHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 就绪检查，返回已加载制品的概况
// GET /v1/triage/ready
func (h *TriageHandler) Ready(c *gin.Context) {
	respondWithSuccess(c, h.readiness, "服务就绪")
}

// Stats 运行期统计
// GET /v1/triage/stats
func (h *TriageHandler) Stats(c *gin.Context) {
	if h.stats == nil {
		respondWithError(c, status.ErrCodeUnavailable, "统计未启用", "")
		return
	}
	respondWithSuccess(c, h.stats(), "统计查询成功")
}

// validationDetails 将绑定错误转为 FastAPI 风格的条目列表
func validationDetails(err error) []ValidationDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ValidationDetail{
				Loc:  fieldLoc(fe.Field()),
				Msg:  validationMessage(fe),
				Type: "value_error." + fe.Tag(),
			})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationDetail{{
			Loc:  []string{"body", typeErr.Field},
			Msg:  fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Type: "type_error",
		}}
	}

	if errors.Is(err, io.EOF) {
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "request body is empty", Type: "value_error.missing"}}
	}

	return []ValidationDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}}
}

// fieldLoc Symptoms[1] -> [body symptoms 1]
func fieldLoc(field string) []string {
	name, index, ok := strings.Cut(field, "[")
	if !ok {
		return []string{"body", jsonFieldName(field)}
	}
	return []string{"body", jsonFieldName(name), strings.TrimSuffix(index, "]")}
}

func jsonFieldName(field string) string {
	switch field {
	case "Age":
		return "age"
	case "Symptoms":
		return "symptoms"
	default:
		return strings.ToLower(field)
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return "ensure this value is greater than or equal to " + fe.Param()
	case "max":
		return "ensure this value is less than or equal to " + fe.Param()
	default:
		return fe.Error()
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"futures-ai/internal/agent"
	"futures-ai/internal/config"
	"futures-ai/internal/order"
	"futures-ai/internal/store"
)

// Server 暴露手工下单与自然语言指令两个 HTTP 入口。
type Server struct {
	cfg      config.ServerConfig
	logger   *zap.Logger
	service  *order.Service
	workflow *agent.Workflow
	store    *store.Store
}

// New 创建 HTTP 服务。
func New(cfg config.ServerConfig, service *order.Service, workflow *agent.Workflow, auditStore *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		workflow: workflow,
		store:    auditStore,
	}
}

// Run 启动服务并阻塞直到 ctx 取消，随后优雅关停。
func (s *Server) Run(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/orders", s.handleOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/instructions", s.handleInstruction).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Info("HTTP 服务已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务异常: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("关闭 HTTP 服务失败", zap.Error(err))
		}
		return nil
	})

	return group.Wait()
}

type orderRequest struct {
	Symbol    string           `json:"symbol"`
	Side      string           `json:"side"`
	OrderType string           `json:"order_type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

type instructionResponse struct {
	WorkflowID string                 `json:"workflow_id"`
	Summary    string                 `json:"summary"`
	Result     *order.ExecutionResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	ErrorStage string                 `json:"error_stage,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// handleOrder 处理手工表单下单，与智能体入口共用同一订单服务。
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("请求体解析失败: %v", err), s.logger)
		return
	}

	result, err := s.service.Execute(r.Context(), req.Symbol, req.Side, req.OrderType, req.Quantity, req.Price)
	if err != nil {
		var validationErr *order.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": validationErr.Message,
				"kind":  string(validationErr.Kind),
			}, s.logger)
			return
		}
		writeError(w, http.StatusBadGateway, err.Error(), s.logger)
		return
	}

	s.audit(r.Context(), result)
	writeJSON(w, http.StatusOK, result, s.logger)
}

// handleInstruction 驱动完整四阶段工作流。
func (s *Server) handleInstruction(w http.ResponseWriter, r *http.Request) {
	var req instructionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("请求体解析失败: %v", err), s.logger)
		return
	}

	state := s.workflow.Run(r.Context(), req.Instruction)

	resp := instructionResponse{
		WorkflowID: state.ID,
		Summary:    state.Summary,
		Result:     state.Result,
	}

	status := http.StatusOK
	if state.Failure != nil {
		resp.Error = state.Failure.Err.Error()
		resp.ErrorStage = string(state.Failure.Stage)
		if state.Failure.Stage == agent.StageExecute {
			status = http.StatusBadGateway
		} else {
			status = http.StatusUnprocessableEntity
		}
	} else if state.Result != nil {
		s.audit(r.Context(), *state.Result)
	}

	writeJSON(w, status, resp, s.logger)
}

func (s *Server) audit(ctx context.Context, result order.ExecutionResult) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordExecution(ctx, result); err != nil {
		s.logger.Warn("写入执行审计失败", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("写入响应失败", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": message}, logger)
}

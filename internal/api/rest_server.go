package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-world/internal/app"
	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/middleware"
	"github.com/annel0/voxel-world/internal/world"
)

// RestServer отдаёт состояние симуляции по HTTP
type RestServer struct {
	router  *gin.Engine
	sim     *app.Simulation
	port    string
	metrics *ServerMetrics
	server  *http.Server
	logger  *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port       string               // порт для запуска сервера, например ":8088"
	Simulation *app.Simulation      // симуляция, состояние которой отдаётся
	Registry   *prometheus.Registry // реестр метрик для /metrics; nil – новый
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// InputRequest – событие ввода: клавиша и/или смещение указателя
type InputRequest struct {
	Key     string  `json:"key"`
	Pressed bool    `json:"pressed"`
	LookDX  float64 `json:"look_dx"`
	LookDY  float64 `json:"look_dy"`
}

// BlockResponse – результат запроса блока
type BlockResponse struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	State       string `json:"state"`
	ID          uint8  `json:"id"`
	Name        string `json:"name,omitempty"`
	HasInstance bool   `json:"has_instance"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(otelgin.Middleware("voxel_api"))
	router.Use(middleware.NewRequestLogger(nil).Handler())

	promMw := middleware.NewPrometheusMiddleware("voxel_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:  router,
		sim:     config.Simulation,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  logging.GetServerLogger(),
	}
	rs.server = &http.Server{
		Addr:              rs.port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/status", rs.handleStatus)
		api.GET("/chunks", rs.handleChunks)
		api.GET("/block", rs.handleBlock)
		api.GET("/server", rs.handleServerInfo)
		api.POST("/input", rs.handleInput)
	}
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает HTTP сервер; блокируется до остановки.
// Если Shutdown уже был вызван, сразу возвращает nil.
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API запущен на %s", rs.port)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает HTTP сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"frame":     rs.sim.FrameCount(),
		"timestamp": time.Now().Unix(),
	})
}

func (rs *RestServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние симуляции",
		Data:    rs.sim.Status(),
	})
}

func (rs *RestServer) handleChunks(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Загруженные чанки",
		Data:    rs.sim.Chunks(),
	})
}

// handleBlock возвращает блок по мировым координатам ?x=&y=&z=
func (rs *RestServer) handleBlock(c *gin.Context) {
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Query(name))
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: "Параметр " + name + " должен быть целым числом",
			})
			return
		}
		coords[i] = v
	}

	lookup := rs.sim.BlockAt(coords[0], coords[1], coords[2])
	resp := BlockResponse{
		X:     coords[0],
		Y:     coords[1],
		Z:     coords[2],
		State: lookup.State.String(),
	}
	if lookup.State == world.Present {
		resp.ID = uint8(lookup.Block.ID)
		resp.Name = lookup.Block.ID.String()
		resp.HasInstance = lookup.Block.HasInstance
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Блок", Data: resp})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    rs.metrics.Snapshot(),
	})
}

// handleInput применяет событие ввода к игроку
func (rs *RestServer) handleInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неверный формат запроса"})
		return
	}

	if req.Key == "" && req.LookDX == 0 && req.LookDY == 0 {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Пустое событие ввода"})
		return
	}

	if req.Key != "" {
		key, err := entity.ParseKey(req.Key)
		if err != nil {
			c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
			return
		}
		rs.sim.HandleKey(key, req.Pressed)
	}
	if req.LookDX != 0 || req.LookDY != 0 {
		rs.sim.Look(req.LookDX, req.LookDY)
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Ввод применён", Data: rs.sim.Status()})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/trendforge/backend/internal/generate"
	"github.com/trendforge/backend/internal/generations"
	"github.com/trendforge/backend/internal/providers"
	"github.com/trendforge/backend/internal/topics"
	"github.com/trendforge/backend/internal/trending"
	"github.com/trendforge/backend/internal/users"
	"go.uber.org/zap"
)

const userIDContextKey = "trendforge_user_id"

var (
	errMissingTokenManager = errors.New("token manager dependency required")
	errMissingUsersService = errors.New("users service dependency required")
	errMissingTopics       = errors.New("topics service dependency required")
	errMissingGenerations  = errors.New("generations service dependency required")
	errMissingTrending     = errors.New("trending fetcher dependency required")
	errInvalidAuth         = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates session tokens.
type TokenManager interface {
	IssueToken(ctx context.Context, userID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// TrendingFetcher produces the current trending topics.
type TrendingFetcher interface {
	Trending(ctx context.Context) ([]trending.Topic, error)
}

// ScriptGenerator produces video scripts.
type ScriptGenerator interface {
	Generate(ctx context.Context, topicTitle, topicDescription string) (generate.ScriptResult, error)
}

// ImageGenerator produces hosted thumbnail images.
type ImageGenerator interface {
	Generate(ctx context.Context, topicTitle, topicDescription string) (generate.ImageResult, error)
}

// BlogGenerator produces and persists blog bundles.
type BlogGenerator interface {
	Generate(ctx context.Context, userID, topicTitle, topicDescription string) (generate.BlogResult, error)
}

// Dependencies wires the HTTP handler to its collaborators.
type Dependencies struct {
	TokenManager TokenManager
	Users        *users.Service
	Topics       *topics.Service
	Generations  *generations.Service
	Trending     TrendingFetcher
	Scripts      ScriptGenerator
	Images       ImageGenerator
	Blogs        BlogGenerator
	Logger       *zap.Logger
}

// NewHTTPHandler builds the gin router for the API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Users == nil {
		return nil, errMissingUsersService
	}
	if deps.Topics == nil {
		return nil, errMissingTopics
	}
	if deps.Generations == nil {
		return nil, errMissingGenerations
	}
	if deps.Trending == nil {
		return nil, errMissingTrending
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:      deps.TokenManager,
		users:       deps.Users,
		topics:      deps.Topics,
		generations: deps.Generations,
		trending:    deps.Trending,
		scripts:     deps.Scripts,
		images:      deps.Images,
		blogs:       deps.Blogs,
		logger:      logger,
	}

	router.POST("/auth/register", handler.handleRegister)
	router.POST("/auth/login", handler.handleLogin)
	router.GET("/trending", handler.handleTrending)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.POST("/generate/script", handler.handleGenerateScript)
	protected.POST("/generate/image", handler.handleGenerateImage)
	protected.POST("/generate/blog", handler.handleGenerateBlog)
	protected.POST("/topics/save", handler.handleTopicSave)
	protected.POST("/generations/save", handler.handleGenerationSave)
	protected.GET("/generations/history", handler.handleHistory)
	protected.GET("/generations/:id", handler.handleGenerationGet)
	protected.DELETE("/generations/:id", handler.handleGenerationDelete)

	return router, nil
}

type httpHandler struct {
	tokens      TokenManager
	users       *users.Service
	topics      *topics.Service
	generations *generations.Service
	trending    TrendingFetcher
	scripts     ScriptGenerator
	images      ImageGenerator
	blogs       BlogGenerator
	logger      *zap.Logger
}

type responseEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, responseEnvelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, responseEnvelope{Success: false, Message: message})
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request registerPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	})
	switch {
	case errors.Is(err, users.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "Name, email and password are required")
	case errors.Is(err, users.ErrEmailTaken):
		fail(c, http.StatusBadRequest, "User already exists")
	case err != nil:
		h.logger.Error("user registration failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while registering user")
	default:
		respond(c, http.StatusCreated, "User registered successfully", user.Summary())
	}
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int64         `json:"expiresIn"`
	TokenType   string        `json:"tokenType"`
	User        users.Summary `json:"user"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), request.Email, request.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while logging in")
		return
	}

	token, expiresIn, err := h.tokens.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while logging in")
		return
	}

	respond(c, http.StatusOK, "Logged in successfully", loginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
		User:        user.Summary(),
	})
}

func (h *httpHandler) handleTrending(c *gin.Context) {
	topicList, err := h.trending.Trending(c.Request.Context())
	switch {
	case errors.Is(err, trending.ErrNoTopics):
		fail(c, http.StatusNotFound, "No trending topics found")
	case errors.Is(err, trending.ErrFeedUnavailable):
		h.logger.Warn("trending feed fetch failed", zap.Error(err))
		fail(c, http.StatusBadGateway, "Failed to fetch trending topics")
	case err != nil:
		h.logger.Error("trending fetch failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while fetching trending topics")
	default:
		respond(c, http.StatusOK, "Trending topics fetched successfully", topicList)
	}
}

type generatePayload struct {
	TopicTitle       string `json:"topicTitle"`
	TopicDescription string `json:"topicDescription"`
}

func (h *httpHandler) bindGenerateRequest(c *gin.Context) (generatePayload, bool) {
	var request generatePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return generatePayload{}, false
	}
	if strings.TrimSpace(request.TopicTitle) == "" {
		fail(c, http.StatusBadRequest, "Topic title is required")
		return generatePayload{}, false
	}
	return request, true
}

func (h *httpHandler) failGeneration(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, generate.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "Topic title is required")
	case errors.Is(err, providers.ErrNotConfigured):
		h.logger.Error("provider not configured", zap.Error(err))
		fail(c, http.StatusInternalServerError, what+" provider is not configured")
	case errors.Is(err, providers.ErrUpstream):
		h.logger.Warn("upstream provider failure", zap.Error(err))
		fail(c, http.StatusBadGateway, "Failed to generate "+what+", please try again")
	default:
		h.logger.Error("generation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while generating "+what)
	}
}

func (h *httpHandler) handleGenerateScript(c *gin.Context) {
	request, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}
	result, err := h.scripts.Generate(c.Request.Context(), request.TopicTitle, request.TopicDescription)
	if err != nil {
		h.failGeneration(c, err, "script")
		return
	}
	respond(c, http.StatusOK, "Script generated successfully", result)
}

func (h *httpHandler) handleGenerateImage(c *gin.Context) {
	request, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}
	result, err := h.images.Generate(c.Request.Context(), request.TopicTitle, request.TopicDescription)
	if err != nil {
		h.failGeneration(c, err, "image")
		return
	}
	respond(c, http.StatusOK, "Image generated and uploaded successfully", result)
}

func (h *httpHandler) handleGenerateBlog(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	request, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}
	result, err := h.blogs.Generate(c.Request.Context(), userID, request.TopicTitle, request.TopicDescription)
	if err != nil {
		h.failGeneration(c, err, "blog")
		return
	}
	respond(c, http.StatusOK, "Blog generated and saved successfully", result)
}

type topicSavePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Traffic     string `json:"traffic"`
	Source      string `json:"source"`
}

type topicSaveResponse struct {
	TopicID string `json:"topicId"`
	topics.Topic
}

func (h *httpHandler) handleTopicSave(c *gin.Context) {
	var request topicSavePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	topic, created, err := h.topics.Save(c.Request.Context(), topics.SaveInput{
		Title:       request.Title,
		Description: request.Description,
		ImageURL:    request.ImageURL,
		Traffic:     request.Traffic,
		Source:      request.Source,
	})
	if errors.Is(err, topics.ErrInvalidInput) {
		fail(c, http.StatusBadRequest, "Title and description are required")
		return
	}
	if err != nil {
		h.logger.Error("topic save failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while saving topic")
		return
	}

	data := topicSaveResponse{TopicID: topic.ID, Topic: topic}
	if created {
		respond(c, http.StatusCreated, "Topic saved successfully", data)
		return
	}
	respond(c, http.StatusOK, "Topic already exists", data)
}

type generationSavePayload struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	ImageData string `json:"imageData"`
	ImageMime string `json:"imageMime"`
	TopicID   string `json:"topicId"`
}

type generationSaveResponse struct {
	GenerationID string `json:"generationId"`
	generations.Generation
}

func (h *httpHandler) handleGenerationSave(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	var request generationSavePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	generationType, ok := generations.ParseType(request.Type)
	if !ok || strings.TrimSpace(request.TopicID) == "" {
		fail(c, http.StatusBadRequest, "Type and topicId are required")
		return
	}

	generation, err := h.generations.Create(c.Request.Context(), generations.CreateInput{
		Type:      generationType,
		Content:   request.Content,
		ImageData: request.ImageData,
		ImageMime: request.ImageMime,
		TopicID:   request.TopicID,
		UserID:    userID,
	})
	if errors.Is(err, generations.ErrInvalidInput) {
		fail(c, http.StatusBadRequest, "Type and topicId are required")
		return
	}
	if err != nil {
		h.logger.Error("generation save failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while saving generation")
		return
	}

	respond(c, http.StatusCreated, "Generation saved successfully",
		generationSaveResponse{GenerationID: generation.ID, Generation: generation})
}

func (h *httpHandler) handleHistory(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	history, err := h.generations.History(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("history fetch failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error while fetching history")
		return
	}
	respond(c, http.StatusOK, "History fetched successfully", history)
}

func (h *httpHandler) handleGenerationGet(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	generation, err := h.generations.Get(c.Request.Context(), c.Param("id"), userID)
	if h.failOwnership(c, err) {
		return
	}
	respond(c, http.StatusOK, "Generation fetched successfully", generation)
}

func (h *httpHandler) handleGenerationDelete(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	err := h.generations.Delete(c.Request.Context(), c.Param("id"), userID)
	if h.failOwnership(c, err) {
		return
	}
	respond(c, http.StatusOK, "Generation deleted successfully", nil)
}

// failOwnership maps ownership-checked access errors and reports whether the
// request already failed.
func (h *httpHandler) failOwnership(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, generations.ErrNotFound):
		fail(c, http.StatusNotFound, "Generation not found")
	case errors.Is(err, generations.ErrForbidden):
		fail(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, generations.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "Generation id is required")
	default:
		h.logger.Error("generation access failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Server error")
	}
	return true
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, responseEnvelope{Success: false, Message: errInvalidAuth.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, responseEnvelope{Success: false, Message: errInvalidAuth.Error()})
		return
	}
	userID, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, responseEnvelope{Success: false, Message: "Unauthorized"})
		return
	}
	c.Set(userIDContextKey, userID)
	c.Next()
}

package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth   service.AuthService
	users  service.UserService
	tasks  service.TaskService
	tokens *auth.TokenManager
}

func NewHandler(authSvc service.AuthService, users service.UserService, tasks service.TaskService, tokens *auth.TokenManager) *Handler {
	return &Handler{
		auth:   authSvc,
		users:  users,
		tasks:  tasks,
		tokens: tokens,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.authRequired(), h.logout)
		authGroup.GET("/me", h.authRequired(), h.me)
	}

	users := router.Group("/users", h.authRequired())
	{
		users.POST("", h.createUser)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
		users.POST("/:id/avatar", h.uploadAvatar)
	}

	tasks := router.Group("/tasks", h.authRequired())
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PATCH("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

type socialPayload struct {
	Linkedin string `json:"linkedin"`
	Github   string `json:"github"`
	Leetcode string `json:"leetcode"`
	Website  string `json:"website"`
}

func (p socialPayload) toDomain() domain.SocialLinks {
	return domain.SocialLinks{
		Linkedin: p.Linkedin,
		Github:   p.Github,
		Leetcode: p.Leetcode,
		Website:  p.Website,
	}
}

type signupRequest struct {
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	AvatarURL string        `json:"avatarUrl"`
	Social    socialPayload `json:"social"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user, token, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
		Social:    req.Social.toDomain(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

// logout is stateless; token invalidation is the client's concern.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully."})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), callerIdentity(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type createUserRequest struct {
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	Role      string        `json:"role"`
	AvatarURL string        `json:"avatarUrl"`
	Social    socialPayload `json:"social"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user, err := h.users.Create(c.Request.Context(), callerIdentity(c), service.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
		AvatarURL: req.AvatarURL,
		Social:    req.Social.toDomain(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, pagination, err := h.users.List(c.Request.Context(), callerIdentity(c), service.ListUsersInput{
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
		Role:      c.Query("role"),
		Keyword:   c.Query("q"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": pagination,
	})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type updateUserRequest struct {
	Username  *string        `json:"username"`
	Email     *string        `json:"email"`
	Password  *string        `json:"password"`
	Role      *string        `json:"role"`
	AvatarURL *string        `json:"avatarUrl"`
	Social    *socialPayload `json:"social"`
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	in := service.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.Social != nil {
		social := req.Social.toDomain()
		in.Social = &social
	}

	user, err := h.users.Update(c.Request.Context(), callerIdentity(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	user, err := h.users.Delete(c.Request.Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Avatar file is required."})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unable to read avatar file."})
		return
	}
	defer src.Close()

	user, err := h.users.SetAvatar(
		c.Request.Context(),
		callerIdentity(c),
		c.Param("id"),
		file.Filename,
		file.Header.Get("Content-Type"),
		src,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `json:"userId"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), callerIdentity(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		UserID:      req.UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(task))
}

func (h *Handler) listTasks(c *gin.Context) {
	tasks, pagination, err := h.tasks.List(c.Request.Context(), callerIdentity(c), service.ListTasksInput{
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Keyword:   c.Query("q"),
		OwnerID:   c.Query("userId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = taskToResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": pagination,
	})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(task))
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		in.Priority = &priority
	}

	task, err := h.tasks.Update(c.Request.Context(), callerIdentity(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	task, err := h.tasks.Delete(c.Request.Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(task))
}

// UserResponse is the outbound user representation. It never carries the
// password hash.
type UserResponse struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Role      string        `json:"role"`
	AvatarURL string        `json:"avatarUrl"`
	Social    socialPayload `json:"social"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
		Social: socialPayload{
			Linkedin: user.Social.Linkedin,
			Github:   user.Social.Github,
			Leetcode: user.Social.Leetcode,
			Website:  user.Social.Website,
		},
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

type TaskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
	UserID      string  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		v := task.DueDate.Format(time.RFC3339)
		resp.DueDate = &v
	}
	return resp
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(apperr.KindOf(err)), gin.H{"message": apperr.MessageOf(err)})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

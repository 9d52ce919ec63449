package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/middleware"
	"github.com/joshua-takyi/eventful/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func setSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", secure, true)
}

// Login godoc
// @Summary Log in
// @Description Sets the accessToken cookie and returns the user.
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "email and password"
// @Success 200 {object} helpers.ApiResponse
// @Failure 401 {object} helpers.ApiResponse
// @Router /users/login [post]
func Login(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request payload"))
			return
		}

		user, token, err := u.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err, "user not found")
			return
		}

		setSessionCookie(c, token, int(u.TokenTTL().Seconds()), secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Login successful"))
	}
}

// Logout godoc
// @Summary Log out
// @Tags users
// @Produce json
// @Success 200 {object} helpers.ApiResponse
// @Router /users/logout [post]
func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		setSessionCookie(c, "", -1, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Logged out successfully"))
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/services"
)

const userNotFound = "user not found"

// Signup godoc
// @Summary Create an account
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.SignupInput true "new user"
// @Success 201 {object} helpers.ApiResponse
// @Failure 400 {object} helpers.ApiResponse
// @Router /users/signup [post]
func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request payload"))
			return
		}

		user, err := u.Signup(c.Request.Context(), in)
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(user, "User created successfully"))
	}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} helpers.ApiResponse
// @Failure 401 {object} helpers.ApiResponse
// @Router /users/me [get]
func Me(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, ""))
	}
}

// GetProfile godoc
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "username"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /users/profile/{username} [get]
func GetProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := u.GetProfile(c.Request.Context(), helpers.StringTrim(c.Param("username")))
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, ""))
	}
}

type profileRequest struct {
	NewBio       *string   `json:"newBio"`
	NewInterests *[]string `json:"newInterests"`
	NewName      *string   `json:"newName"`
}

// UpdateProfile godoc
// @Summary Update bio, interests or name
// @Description Only supplied fields change.
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param profile body profileRequest true "fields to change"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /users/update-user-profile [put]
func UpdateProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request payload"))
			return
		}

		user, err := u.UpdateProfile(c.Request.Context(), userID, models.ProfileUpdate{
			FullName:  req.NewName,
			Bio:       req.NewBio,
			Interests: req.NewInterests,
		})
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Bio changed!"))
	}
}

// UploadProfilePicture godoc
// @Summary Replace the profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param image formData file true "picture"
// @Success 200 {object} helpers.ApiResponse
// @Failure 400 {object} helpers.ApiResponse
// @Router /users/profile-picture [put]
func UploadProfilePicture(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		image, closeImage, err := imageUpload(c, "image")
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		defer closeImage()
		if image == nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("image is required"))
			return
		}

		user, err := u.SetProfilePicture(c.Request.Context(), userID, *image)
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Profile picture updated"))
	}
}

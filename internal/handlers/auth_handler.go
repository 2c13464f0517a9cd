package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/lipi-scribe-api/internal/database"
	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const msgCredentialsRequired = "Email, password, and user type are required"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"userType" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	UserType string `json:"userType" binding:"required,usertype"`
	Name     string `json:"name" binding:"required"`

	Specialty    string `json:"specialty"`
	Organization string `json:"organization"`
	License      string `json:"license"`

	// DateOfBirth is a calendar date (2006-01-02) or an RFC 3339 timestamp.
	DateOfBirth         string `json:"dateOfBirth"`
	Phone               string `json:"phone"`
	MedicalRecordNumber string `json:"medicalRecordNumber"`
	Age                 int    `json:"age" binding:"gte=0,lte=150"`
}

const msgInvalidDateOfBirth = "dateOfBirth must be a date in YYYY-MM-DD format"

var dateOfBirthLayouts = []string{time.DateOnly, time.RFC3339}

// parseDateOfBirth returns nil for an empty value.
func parseDateOfBirth(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateOfBirthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New(msgInvalidDateOfBirth)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks email, password and user type together; any mismatch is
// the same 401.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCredentialsRequired})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	var user models.User
	filter := bson.M{"email": normalizeEmail(req.Email), "userType": req.UserType}
	err := h.DB.Collection(database.UsersCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		internalError(c, "login lookup failed", err)
		return
	}
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials or user type"})
		return
	}

	token, err := h.Tokens.Generate(user.ID.Hex(), user.UserType)
	if err != nil {
		internalError(c, "could not generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
		"message": "Login successful",
	})
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := bindingMessage(err)
		if missingCredentials(err) {
			msg = msgCredentialsRequired
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	dateOfBirth, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		internalError(c, "failed to hash password", err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     normalizeEmail(req.Email),
		Password:  hashedPassword,
		Name:      strings.TrimSpace(req.Name),
		UserType:  req.UserType,
		Phone:     req.Phone,
		Age:       req.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch user.UserType {
	case models.UserTypeDoctor:
		user.Specialty = req.Specialty
		user.Organization = req.Organization
		user.License = req.License
	case models.UserTypePatient:
		user.DateOfBirth = dateOfBirth
		user.MedicalRecordNumber = strings.TrimSpace(req.MedicalRecordNumber)
		if user.MedicalRecordNumber == "" {
			user.MedicalRecordNumber = utils.GenerateMRN(now)
		}
		user.MRN = user.MedicalRecordNumber
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if _, err := h.DB.Collection(database.UsersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		internalError(c, "failed to create user", err)
		return
	}

	token, err := h.Tokens.Generate(user.ID.Hex(), user.UserType)
	if err != nil {
		internalError(c, "could not generate token", err)
		return
	}

	log.Info().Str("userId", user.ID.Hex()).Str("userType", user.UserType).Msg("user signed up")
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
		"message": "User created successfully",
	})
}

// currentUser loads the authenticated user. It returns mongo.ErrNoDocuments
// when the account no longer exists.
func (h *Handler) currentUser(c *gin.Context) (*models.User, error) {
	userID, err := primitive.ObjectIDFromHex(callerID(c))
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	var user models.User
	if err := h.DB.Collection(database.UsersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.currentUser(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		internalError(c, "failed to load current user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListUsers returns every user without password hashes, optionally only
// one user type.
func (h *Handler) ListUsers(c *gin.Context) {
	filter := bson.M{}
	if userType := c.Query("userType"); userType != "" {
		if !models.ValidUserType(userType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userType must be doctor or patient"})
			return
		}
		filter["userType"] = userType
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection(database.UsersCollection).Find(ctx, filter, opts)
	if err != nil {
		internalError(c, "failed to retrieve users", err)
		return
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		internalError(c, "failed to decode users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

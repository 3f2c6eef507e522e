package handlers

import (
	"database/sql"
	"net/http"
	"time"

	intconfig "annexe9-backend/internal/config"
	"annexe9-backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthUser is the session user payload returned to the frontend.
type AuthUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var (
		user         AuthUser
		passwordHash string
	)
	err := intconfig.DB.QueryRow(`
        SELECT id, name, username, email, password_hash, role, status
        FROM users
        WHERE email = ? OR username = ?
    `, req.Email, req.Email).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&passwordHash,
		&user.Role,
		&user.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email ou mot de passe incorrect"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "requête utilisateur échouée"})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "email ou mot de passe incorrect"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "compte désactivé"})
		return
	}

	tokenString, err := middleware.SignToken(user.ID, user.Role, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "création du jeton échouée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "le mot de passe doit contenir au moins 8 caractères"})
		return
	}

	var exists int
	err := intconfig.DB.QueryRow(`
        SELECT COUNT(*)
        FROM users
        WHERE email = ? OR username = ?
    `, req.Email, req.Username).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vérification utilisateur échouée"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email ou nom d'utilisateur déjà enregistré"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hachage du mot de passe échoué"})
		return
	}

	res, err := intconfig.DB.Exec(`
        INSERT INTO users (name, username, email, password_hash, role, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, 'staff', 'active', NOW(), NOW())
    `, req.Name, req.Username, req.Email, string(hash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enregistrement utilisateur échoué"})
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "inscription réussie",
		"user": AuthUser{
			ID:       id,
			Name:     req.Name,
			Username: req.Username,
			Email:    req.Email,
			Role:     "staff",
			Status:   "active",
		},
	})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/schoolfeed/schoolfeed/model"
	"github.com/schoolfeed/schoolfeed/server/middlewares"
	"github.com/schoolfeed/schoolfeed/token"
)

type signUpRequest struct {
	Handle      string `json:"username" binding:"required,alphanum,min=4,max=20"`
	Password    string `json:"password" binding:"required,min=4,max=30"`
	DisplayName string `json:"name" binding:"required,min=1,max=10"`
	Role        string `json:"role" binding:"required,oneof=student admin"`
}

type signUpData struct {
	Handle      string `json:"username"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
}

type signInRequest struct {
	Handle   string `json:"username" binding:"required,alphanum,min=4,max=20"`
	Password string `json:"password" binding:"required,min=4,max=30"`
}

type signInData struct {
	AccessToken string `json:"access_token"`
}

// SignUp registers a new account. 409 when the handle is taken.
func (s *Server) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	data, err := s.register(req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response{Message: "sign-up succeeded", Data: data})
}

func (s *Server) register(req signUpRequest) (*signUpData, error) {
	var existing model.Account
	err := s.DB.Where("handle = ?", req.Handle).First(&existing).Error
	if err == nil {
		return nil, errConflict("handle already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "fail to look up handle")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "fail to hash credential")
	}

	account := model.Account{
		Handle:       req.Handle,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         req.Role,
	}
	if err := s.DB.Create(&account).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create account")
	}

	var data signUpData
	if err := copier.Copy(&data, &account); err != nil {
		return nil, errors.Wrap(err, "fail to map account")
	}
	return &data, nil
}

// SignIn authenticates a handle/credential pair and issues a bearer
// token. 401 on unknown handle or credential mismatch.
func (s *Server) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errValidation(err.Error()))
		return
	}

	data, err := s.authenticate(req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "sign-in succeeded", Data: data})
}

func (s *Server) authenticate(req signInRequest) (*signInData, error) {
	var account model.Account
	err := s.DB.Where("handle = ?", req.Handle).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUnauthenticated("handle does not exist")
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up account")
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, errUnauthenticated("password does not match")
	}

	signed, err := token.Issue(account.Id, account.Role, middlewares.Secret())
	if err != nil {
		return nil, errors.Wrap(err, "fail to issue token")
	}
	return &signInData{AccessToken: signed}, nil
}

package daemon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/config"
	"github.com/charlie0129/corrcal/pkg/version"
)

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func setTheme(c *gin.Context) {
	var s string
	if err := c.BindJSON(&s); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	theme, err := config.ParseTheme(s)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	conf.SetTheme(theme)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set theme to %s", theme)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("theme set to %s", theme))
}

func setDefaultUnit(c *gin.Context) {
	var u calcium.Unit
	if err := c.BindJSON(&u); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	conf.SetDefaultUnit(u)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set default unit to %s", u)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("default unit set to %s. Existing sessions keep their unit.", u))
}

func calculate(c *gin.Context) {
	var req api.CalculateRequest
	if err := c.BindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	u := conf.DefaultUnit()
	if req.Unit != nil {
		u = *req.Unit
	}

	st := calcium.Derive(calcium.Inputs{Calcium: req.Calcium, Albumin: req.Albumin, Unit: u})
	c.IndentedJSON(http.StatusOK, api.NewState(st))
}

var errNoResult = errors.New("no corrected calcium value yet, both inputs must be numbers")

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// All endpoints answer HTTP 200 with a {success, message, data} envelope;
// success=false carries a message the caller can show to the user.

func respondSuccess(c *gin.Context, data interface{}) {
	body := gin.H{"success": true, "message": ""}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func respondFail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": message})
}

func respondError(c *gin.Context, err error) {
	respondFail(c, err.Error())
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageQuery holds the paging parameters of a list request and the page of
// results sent back.
type pageQuery struct {
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int         `json:"total"`
	Items    interface{} `json:"items"`
}

func getPageQuery(c *gin.Context) *pageQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &pageQuery{Page: page, PageSize: pageSize}
}

func (p *pageQuery) startIdx() int {
	return (p.Page - 1) * p.PageSize
}

package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"perpusku/models"
	"perpusku/pkg/circulation"
	"perpusku/pkg/covers"

	"github.com/gin-gonic/gin"
)

// paramID parses the :id path segment.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// listBooksHandler returns all non-deleted titles, A-Z.
func listBooksHandler(c *gin.Context) {
	var books []models.Book
	if err := db.Where("deleted_at IS NULL").Order("title ASC").Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, books)
}

type bookRequest struct {
	Title         string `json:"title" binding:"required"`
	Author        string `json:"author" binding:"required"`
	ISBN          string `json:"isbn"`
	Category      string `json:"category"`
	Publisher     string `json:"publisher"`
	PublishedYear int    `json:"published_year"`
	RackLocation  string `json:"rack_location"`
	TotalCopy     int    `json:"total_copy" binding:"required,gt=0"`
	Cover         string `json:"cover"`
	Status        string `json:"status"`
}

func createBookHandler(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	book := models.Book{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Category:      req.Category,
		Publisher:     req.Publisher,
		PublishedYear: req.PublishedYear,
		RackLocation:  req.RackLocation,
		TotalCopy:     req.TotalCopy,
		Cover:         req.Cover,
		Status:        req.Status,
	}
	if err := circ.CreateBook(&book); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": book.ID, "barcode": book.Barcode})
}

// updateBookHandler overwrites the editable columns. Copy counts and status
// are taken as supplied; the borrow/return paths are the only place the
// invariants are strictly enforced.
func updateBookHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		bookRequest
		AvailableCopy int `json:"available_copy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{
		"title":          req.Title,
		"author":         req.Author,
		"isbn":           req.ISBN,
		"category":       req.Category,
		"publisher":      req.Publisher,
		"published_year": req.PublishedYear,
		"rack_location":  req.RackLocation,
		"total_copy":     req.TotalCopy,
		"available_copy": req.AvailableCopy,
		"cover":          req.Cover,
		"status":         req.Status,
	}
	res := db.Model(&models.Book{}).Where("id = ? AND deleted_at IS NULL", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, circulation.ErrBookNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book updated"})
}

func deleteBookHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := circ.DeleteBook(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

// findBookHandler looks a title up by ISBN or barcode for the circulation
// desk scanner. A hit that cannot be loaned reports why.
func findBookHandler(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}
	var book models.Book
	err := db.Where("(isbn = ? OR barcode = ?) AND deleted_at IS NULL", q, q).
		Order("id ASC").First(&book).Error
	if err != nil {
		respondError(c, circulation.ErrBookNotFound)
		return
	}
	if book.AvailableCopy <= 0 {
		respondError(c, circulation.ErrOutOfStock)
		return
	}
	if book.Status == models.BookStatusUnavailable {
		respondError(c, circulation.ErrBookUnavailable)
		return
	}
	c.JSON(http.StatusOK, book)
}

func bookBorrowersHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	details, err := queryLoanDetails("l.book_id = ?", []interface{}{id}, "l.loan_date DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// bookLoanCountHandler counts how often a title went out in the last year.
func bookLoanCountHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var count int64
	err := db.Model(&models.Loan{}).
		Where("book_id = ? AND loan_date >= ?", id, time.Now().AddDate(-1, 0, 0)).
		Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// uploadCoverHandler accepts a multipart image, normalizes it into the
// cover directory and attaches it to the book.
func uploadCoverHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var book models.Book
	if err := db.Where("id = ? AND deleted_at IS NULL", id).First(&book).Error; err != nil {
		respondError(c, circulation.ErrBookNotFound)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	if !covers.IsSupported(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}
	tmp := filepath.Join(os.TempDir(), file.Filename)
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	defer os.Remove(tmp)
	name, err := covers.Process(tmp, coverBaseDir())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover processing failed"})
		return
	}
	cover := filepath.ToSlash(filepath.Join(coverBaseDir(), name))
	if err := db.Model(&models.Book{}).Where("id = ?", id).Update("cover", cover).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cover": cover})
}

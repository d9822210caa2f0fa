package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const MessageBookNotFound = "No book found with this id"

type createBookRequest struct {
	BookTitle string `json:"book_title"`
	Author    string `json:"author"`
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	list, err := controller.store.ListBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	if list == nil {
		list = []entities.Book{}
	}
	c.JSON(http.StatusOK, list)
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessageBookNotFound)
		return
	}

	book, err := controller.store.GetBookByID(c.Request.Context(), id)
	if errors.Is(err, books.ErrBookNotFound) {
		respondNotFound(c, MessageBookNotFound)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook adds a book to the session user's shelf.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}

	book := &entities.Book{
		BookTitle: req.BookTitle,
		Author:    req.Author,
		UserID:    auth.GetUserID(c),
	}
	err := controller.store.CreateBook(c.Request.Context(), book)
	switch {
	case errors.Is(err, entities.ErrInvalidContent):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, entities.ErrOwnerNotFound):
		respondNotFound(c, auth.MessageNoSession)
		return
	case err != nil:
		respondInternalError(c, err, "create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid id")
		return
	}

	var update entities.BookUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}
	if update.IsEmpty() {
		respondBadRequest(c, MessageNoFields)
		return
	}

	n, err := controller.store.UpdateBook(c.Request.Context(), id, auth.GetUserID(c), update)
	if errors.Is(err, entities.ErrInvalidContent) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}
	if n == 0 {
		respondNotFound(c, MessageBookNotFound)
		return
	}
	respondRowsAffected(c, n)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessageBookNotFound)
		return
	}

	n, err := controller.store.DeleteBook(c.Request.Context(), id, auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if n == 0 {
		respondNotFound(c, MessageBookNotFound)
		return
	}
	respondRowsAffected(c, n)
}

package dummyjson

import (
	"time"

	"github.com/shopfront/api/internal/domain"
)

// productPayload mirrors the upstream product document.
type productPayload struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              float64         `json:"price"`
	DiscountPercentage float64         `json:"discountPercentage"`
	Rating             float64         `json:"rating"`
	Stock              int             `json:"stock"`
	Brand              string          `json:"brand"`
	Category           string          `json:"category"`
	Thumbnail          string          `json:"thumbnail"`
	Images             []string        `json:"images"`
	Reviews            []reviewPayload `json:"reviews"`
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercentage,
		Rating:          p.Rating,
		Stock:           p.Stock,
		Brand:           p.Brand,
		Category:        p.Category,
		Thumbnail:       p.Thumbnail,
		Images:          p.Images,
	}
}

type productListPayload struct {
	Products []productPayload `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

func (p productListPayload) toDomain() domain.ProductPage {
	products := make([]domain.Product, 0, len(p.Products))
	for _, item := range p.Products {
		products = append(products, item.toDomain())
	}
	return domain.ProductPage{
		Products: products,
		Total:    p.Total,
		Skip:     p.Skip,
		Limit:    p.Limit,
	}
}

// reviewPayload is one embedded product review.
type reviewPayload struct {
	Rating        float64   `json:"rating"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

// Review is a product review attached to an upstream product document.
type Review struct {
	Rating       float64
	Comment      string
	Date         time.Time
	ReviewerName string
}

func (r reviewPayload) toReview() Review {
	return Review{
		Rating:       r.Rating,
		Comment:      r.Comment,
		Date:         r.Date,
		ReviewerName: r.ReviewerName,
	}
}

// categoryPayload mirrors an upstream category descriptor.
type categoryPayload struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category is an upstream catalog category.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// commentPayload mirrors an upstream comment document.
type commentPayload struct {
	ID     int    `json:"id"`
	Body   string `json:"body"`
	PostID int    `json:"postId"`
	Likes  int    `json:"likes"`
	User   struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
	} `json:"user"`
}

// Comment is an upstream comment tied to a post identifier.
type Comment struct {
	ID         int
	PostID     int
	Body       string
	Likes      int
	AuthorName string
}

func (c commentPayload) toComment() Comment {
	author := c.User.FullName
	if author == "" {
		author = c.User.Username
	}
	return Comment{
		ID:         c.ID,
		PostID:     c.PostID,
		Body:       c.Body,
		Likes:      c.Likes,
		AuthorName: author,
	}
}

type commentListPayload struct {
	Comments []commentPayload `json:"comments"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

// CommentPage is one page of the upstream comment feed.
type CommentPage struct {
	Comments []Comment
	Total    int
	Skip     int
	Limit    int
}

func (p commentListPayload) toPage() CommentPage {
	comments := make([]Comment, 0, len(p.Comments))
	for _, item := range p.Comments {
		comments = append(comments, item.toComment())
	}
	return CommentPage{Comments: comments, Total: p.Total, Skip: p.Skip, Limit: p.Limit}
}

// userPayload mirrors the upstream user document. Only fields the API
// surfaces are decoded.
type userPayload struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// User is the upstream user projection.
type User struct {
	ID        int
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (u userPayload) toUser() User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type userListPayload struct {
	Users []userPayload `json:"users"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

// UserPage is one page of the upstream user directory.
type UserPage struct {
	Users []User
	Total int
	Skip  int
	Limit int
}

func (p userListPayload) toPage() UserPage {
	users := make([]User, 0, len(p.Users))
	for _, item := range p.Users {
		users = append(users, item.toUser())
	}
	return UserPage{Users: users, Total: p.Total, Skip: p.Skip, Limit: p.Limit}
}

// cartPayload mirrors an upstream demo cart.
type cartPayload struct {
	ID       int     `json:"id"`
	UserID   int     `json:"userId"`
	Total    float64 `json:"total"`
	Products []struct {
		ID       int     `json:"id"`
		Title    string  `json:"title"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"products"`
}

// CartLine is one product entry of an upstream demo cart.
type CartLine struct {
	ProductID int
	Title     string
	Price     float64
	Quantity  int
}

// Cart is an upstream demo cart snapshot.
type Cart struct {
	ID     int
	UserID int
	Total  float64
	Lines  []CartLine
}

func (c cartPayload) toCart() Cart {
	lines := make([]CartLine, 0, len(c.Products))
	for _, item := range c.Products {
		lines = append(lines, CartLine{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return Cart{ID: c.ID, UserID: c.UserID, Total: c.Total, Lines: lines}
}

type cartListPayload struct {
	Carts []cartPayload `json:"carts"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

// loginPayload mirrors the upstream auth response.
type loginPayload struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthenticatedUser is the upstream login result.
type AuthenticatedUser struct {
	ID        int
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (p loginPayload) toAuthenticatedUser() AuthenticatedUser {
	return AuthenticatedUser{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

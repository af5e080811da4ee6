package dummyjson

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL), server
}

func TestProductsSendsPagingParams(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Fatalf("expected limit=20, got %q", got)
		}
		if got := r.URL.Query().Get("skip"); got != "40" {
			t.Fatalf("expected skip=40, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"products": []map[string]interface{}{
				{"id": 1, "title": "Essence Mascara", "price": 9.99, "discountPercentage": 7.17, "stock": 5},
			},
			"total": 194,
			"skip":  40,
			"limit": 20,
		})
	})

	page, err := client.Products(context.Background(), 20, 40)
	if err != nil {
		t.Fatalf("Products returned error: %v", err)
	}
	if page.Total != 194 {
		t.Fatalf("expected total 194, got %d", page.Total)
	}
	if len(page.Products) != 1 || page.Products[0].Title != "Essence Mascara" {
		t.Fatalf("unexpected products payload: %+v", page.Products)
	}
	if page.Products[0].DiscountPercent != 7.17 {
		t.Fatalf("expected discount mapped, got %v", page.Products[0].DiscountPercent)
	}
}

func TestProductNotFound(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Product with id '9999' not found"}`, http.StatusNotFound)
	})

	_, _, err := client.Product(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductDecodesReviews(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/5" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 5,
			"title": "Red Nail Polish",
			"price": 8.99,
			"reviews": [
				{"rating": 4, "comment": "Great value!", "date": "2024-05-23T08:56:21.619Z", "reviewerName": "Leo Rivera"}
			]
		}`))
	})

	product, reviews, err := client.Product(context.Background(), 5)
	if err != nil {
		t.Fatalf("Product returned error: %v", err)
	}
	if product.ID != 5 || product.Title != "Red Nail Polish" {
		t.Fatalf("unexpected product: %+v", product)
	}
	if len(reviews) != 1 || reviews[0].ReviewerName != "Leo Rivera" || reviews[0].Rating != 4 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func TestSearchProductsSendsQuery(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "phone" {
			t.Fatalf("expected q=phone, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"products": []interface{}{}, "total": 0})
	})

	if _, err := client.SearchProducts(context.Background(), "phone", 10, 0); err != nil {
		t.Fatalf("SearchProducts returned error: %v", err)
	}
}

func TestCategories(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/categories" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"slug":"beauty","name":"Beauty","url":"https://dummyjson.com/products/category/beauty"}]`))
	})

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if len(categories) != 1 || categories[0].Slug != "beauty" || categories[0].Name != "Beauty" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestCommentsForPostFlattensAuthor(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comments/post/6" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"comments": [
				{"id": 15, "body": "Nice one", "postId": 6, "likes": 2, "user": {"id": 3, "username": "oliviaw", "fullName": "Olivia Wilson"}}
			],
			"total": 1, "skip": 0, "limit": 1
		}`))
	})

	comments, err := client.CommentsForPost(context.Background(), 6)
	if err != nil {
		t.Fatalf("CommentsForPost returned error: %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorName != "Olivia Wilson" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid credentials"}`, http.StatusBadRequest)
	})

	_, err := client.Login(context.Background(), "emilys", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if body["username"] != "emilys" || body["password"] != "emilyspass" {
			t.Fatalf("unexpected credentials: %v", body)
		}
		_, _ = w.Write([]byte(`{"id": 1, "username": "emilys", "email": "emily@x.com", "firstName": "Emily", "lastName": "Johnson"}`))
	})

	user, err := client.Login(context.Background(), "emilys", "emilyspass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != 1 || user.Username != "emilys" || user.FirstName != "Emily" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Token expired"}`, http.StatusUnauthorized)
	})

	_, err := client.Products(context.Background(), 10, 0)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.Products(context.Background(), 10, 0)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestUnreachableHostMapsToUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, err := client.Categories(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

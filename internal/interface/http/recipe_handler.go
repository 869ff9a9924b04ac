package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/pkg/response"
)

const maxImageBytes = 10 << 20

type RecipeHandler struct {
	Svc    *application.RecipeService
	Logger *logrus.Logger
}

func NewRecipeHandler(svc *application.RecipeService, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Logger: logger}
}

type nameRequest struct {
	Name string `json:"name"`
}

// recipeRequest keeps every field optional so PATCH can tell an omitted
// relation list from an empty one. Owner fields are not accepted.
type recipeRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	TimeMinutes *int          `json:"time_minutes"`
	Price       *entity.Price `json:"price"`
	Link        *string       `json:"link"`
	Tags        relationList  `json:"tags"`
	Ingredients relationList  `json:"ingredients"`
}

// relationList tells an omitted key, an explicit null and a list apart.
type relationList struct {
	present bool
	null    bool
	items   []nameRequest
}

func (l *relationList) UnmarshalJSON(b []byte) error {
	l.present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		l.null = true
		return nil
	}
	return json.Unmarshal(b, &l.items)
}

func (l relationList) names() *[]string {
	if !l.present {
		return nil
	}
	out := make([]string, len(l.items))
	for i, n := range l.items {
		out[i] = n.Name
	}
	return &out
}

func (r recipeRequest) input() (application.RecipeInput, error) {
	v := &entity.ValidationError{}
	if r.Tags.null {
		v.Add("tags", "this field may not be null")
	}
	if r.Ingredients.null {
		v.Add("ingredients", "this field may not be null")
	}
	if err := v.OrNil(); err != nil {
		return application.RecipeInput{}, err
	}
	return application.RecipeInput{
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        r.Tags.names(),
		Ingredients: r.Ingredients.names(),
	}, nil
}

func (h *RecipeHandler) listViews(recs []*entity.Recipe) []RecipeListView {
	out := make([]RecipeListView, len(recs))
	for i, r := range recs {
		out[i] = NewRecipeListView(r, h.Svc.ImageURL)
	}
	return out
}

// List handles GET /recipie/recipies/?tags=1,2&ingredients=3.
func (h *RecipeHandler) List(c *gin.Context) {
	var f entity.RecipeFilter
	var err error
	if f.TagIDs, err = queryIDs(c, "tags"); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if f.IngredientIDs, err = queryIDs(c, "ingredients"); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	recs, err := h.Svc.List(c.Request.Context(), currentUser(c), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, h.listViews(recs))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	rec, err := h.Svc.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, NewRecipeDetailView(rec, h.Svc.ImageURL))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewRecipeDetailView(rec, h.Svc.ImageURL))
}

// Put replaces scalar fields; tags and ingredients follow PATCH rules.
func (h *RecipeHandler) Put(c *gin.Context) { h.update(c, false) }

func (h *RecipeHandler) Patch(c *gin.Context) { h.update(c, true) }

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	rec, err := h.Svc.Update(c.Request.Context(), currentUser(c), id, in, partial)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewRecipeDetailView(rec, h.Svc.ImageURL))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// UploadImage handles the multipart "image" field.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		writeError(c, h.Logger, entity.NewValidationError("image", "is required"))
		return
	}
	if fh.Size > maxImageBytes {
		writeError(c, h.Logger, entity.NewValidationError("image", "file too large"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		writeError(c, h.Logger, err)
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(c, h.Logger, entity.NewValidationError("image",
			"upload a valid image. The file you uploaded was either not an image or a corrupted image"))
		return
	}

	rec, err := h.Svc.UploadImage(c.Request.Context(), currentUser(c), id, fh.Filename, contentType,
		io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewRecipeImageView(rec, h.Svc.ImageURL))
}

// Search handles GET /recipie/search/?q=soup&size=20.
func (h *RecipeHandler) Search(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(c, h.Logger, entity.NewValidationError("size", "must be between 1 and 100"))
			return
		}
		size = n
	}
	recs, err := h.Svc.Search(c.Request.Context(), currentUser(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, h.listViews(recs))
}

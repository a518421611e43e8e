// AngelaMos | 2026
// dto.go

package catalog

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GenreRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title writes reference category and genres by slug; reads expand them
// into nested objects plus the computed rating.
type CreateTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=200"`
	Year        int      `json:"year"        validate:"gte=0"`
	Description *string  `json:"description" validate:"omitempty"`
	Category    string   `json:"category"    validate:"required,max=50"`
	Genre       []string `json:"genre"       validate:"omitempty,dive,max=50"`
}

type UpdateTitleRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Year        *int      `json:"year,omitempty"        validate:"omitempty,gte=0"`
	Description *string   `json:"description,omitempty" validate:"omitempty"`
	Category    *string   `json:"category,omitempty"    validate:"omitempty,max=50"`
	Genre       *[]string `json:"genre,omitempty"       validate:"omitempty,dive,max=50"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description"`
	Category    *CategoryResponse `json:"category"`
	Genre       []GenreResponse   `json:"genre"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

type ListTitlesParams struct {
	Page     int
	PageSize int
	Category string
	Genre    string
	Name     string
	Year     *int
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func (p *ListParams) Normalize() {
	p.Page, p.PageSize = normalizePage(p.Page, p.PageSize)
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p *ListTitlesParams) Normalize() {
	p.Page, p.PageSize = normalizePage(p.Page, p.PageSize)
}

func (p *ListTitlesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}

func ToGenreResponse(g *Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}

func ToCategoryResponseList(categories []Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, ToCategoryResponse(&c))
	}
	return responses
}

func ToGenreResponseList(genres []Genre) []GenreResponse {
	responses := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		responses = append(responses, ToGenreResponse(&g))
	}
	return responses
}

func ToTitleResponse(t *TitleDetail) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]GenreResponse, 0, len(t.Genres)),
	}

	if t.Category != nil {
		category := ToCategoryResponse(t.Category)
		resp.Category = &category
	}

	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, ToGenreResponse(&g))
	}

	return resp
}

func ToTitleResponseList(titles []TitleDetail) []TitleResponse {
	responses := make([]TitleResponse, 0, len(titles))
	for i := range titles {
		responses = append(responses, ToTitleResponse(&titles[i]))
	}
	return responses
}

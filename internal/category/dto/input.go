package dto

type CreateCategoryInput struct {
	Name        string
	Description string
}

type UpdateCategoryInput struct {
	ID          string
	Description string
}

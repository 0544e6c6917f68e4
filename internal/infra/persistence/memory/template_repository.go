package memory

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
)

// templateRepository implements repository.TemplateRepository over the
// embedded template catalogue.
type templateRepository struct {
	templates []repository.Template
}

// NewTemplateRepository loads the built-in templates.
func NewTemplateRepository() (repository.TemplateRepository, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &templateRepository{templates: templates}, nil
}

// List returns every template with a copy of its page.
func (repo *templateRepository) List(_ context.Context) ([]repository.Template, error) {
	out := make([]repository.Template, len(repo.templates))
	for i, t := range repo.templates {
		out[i] = repository.Template{ID: t.ID, Name: t.Name, Page: t.Page.Clone()}
	}

	return out, nil
}

// FindByID returns a copy of the template page.
func (repo *templateRepository) FindByID(_ context.Context, id string) (*entity.LandingPage, error) {
	for _, t := range repo.templates {
		if t.ID == id {
			return t.Page.Clone(), nil
		}
	}

	return nil, repository.ErrTemplateNotFound
}

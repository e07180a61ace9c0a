package storerepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/skill"
)

type skillRepository struct {
	skills collection[skill.Skill]
}

var _ skill.Repository = (*skillRepository)(nil) // interface compliance check

func NewSkillRepository(store core.Store) skill.Repository {
	return &skillRepository{
		skills: collection[skill.Skill]{store: store, name: core.CollSkills, notFound: skill.ErrNotFound},
	}
}

func (repo *skillRepository) CreateSkill(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	s.ID = newID()
	if err := repo.skills.insert(ctx, s.ID, s); err != nil {
		return skill.Skill{}, errors.Wrap(err, "inserting skill")
	}
	return s, nil
}

func (repo *skillRepository) GetSkillByID(ctx context.Context, id string) (skill.Skill, error) {
	return repo.skills.get(ctx, id)
}

func (repo *skillRepository) QueryAllSkills(ctx context.Context) ([]skill.Skill, error) {
	return repo.skills.all(ctx)
}

func (repo *skillRepository) FilterSkills(ctx context.Context, filter skill.QueryFilter) ([]skill.Skill, error) {
	return repo.skills.filter(ctx, filter.Match)
}

func (repo *skillRepository) UpdateSkill(ctx context.Context, id string, fn func(*skill.Skill) error) (skill.Skill, error) {
	return repo.skills.update(ctx, id, fn)
}

package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/SAP-F-2025/proficiency-service/internal/errors"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

//go:embed roles.yaml
var defaultRoles []byte

// Catalog is the read-only Role → Skill → Task hierarchy. It is safe for
// concurrent use because nothing mutates it after loading.
type Catalog struct {
	roles []models.Role

	roleByID    map[string]*models.Role
	skillByID   map[string]*models.Skill
	taskByID    map[string]models.Task
	skillOfTask map[string]string
	roleOfSkill map[string]string
}

type catalogFile struct {
	Roles []models.Role `yaml:"roles"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultRoles)
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return New(f.Roles)
}

// New builds a catalog from roles, rejecting duplicate ids, unnamed entries,
// unknown complexities and skills without tasks.
func New(roles []models.Role) (*Catalog, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("catalog has no roles")
	}

	c := &Catalog{
		roles:       roles,
		roleByID:    make(map[string]*models.Role),
		skillByID:   make(map[string]*models.Skill),
		taskByID:    make(map[string]models.Task),
		skillOfTask: make(map[string]string),
		roleOfSkill: make(map[string]string),
	}

	for ri := range c.roles {
		role := &c.roles[ri]
		if role.ID == "" || role.Name == "" {
			return nil, fmt.Errorf("role #%d: id and name are required", ri+1)
		}
		if _, dup := c.roleByID[role.ID]; dup {
			return nil, fmt.Errorf("duplicate role id %q", role.ID)
		}
		c.roleByID[role.ID] = role

		for si := range role.Skills {
			skill := &role.Skills[si]
			if skill.ID == "" || skill.Name == "" {
				return nil, fmt.Errorf("role %q skill #%d: id and name are required", role.ID, si+1)
			}
			if _, dup := c.skillByID[skill.ID]; dup {
				return nil, fmt.Errorf("duplicate skill id %q", skill.ID)
			}
			if len(skill.Tasks) == 0 {
				return nil, fmt.Errorf("skill %q has no tasks", skill.ID)
			}
			c.skillByID[skill.ID] = skill
			c.roleOfSkill[skill.ID] = role.ID

			for _, task := range skill.Tasks {
				if task.ID == "" || task.Name == "" {
					return nil, fmt.Errorf("skill %q: task id and name are required", skill.ID)
				}
				if !task.Complexity.IsValid() {
					return nil, fmt.Errorf("task %q: unknown complexity %q", task.ID, task.Complexity)
				}
				if _, dup := c.taskByID[task.ID]; dup {
					return nil, fmt.Errorf("duplicate task id %q", task.ID)
				}
				c.taskByID[task.ID] = task
				c.skillOfTask[task.ID] = skill.ID
			}
		}
	}

	return c, nil
}

// Roles returns every role in catalog order.
func (c *Catalog) Roles() []models.Role {
	out := make([]models.Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// Summaries lists the roles without their nested skills.
func (c *Catalog) Summaries() []models.RoleSummary {
	out := make([]models.RoleSummary, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, models.RoleSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			SkillsCount: len(r.Skills),
		})
	}
	return out
}

func (c *Catalog) Role(id string) (models.Role, error) {
	r, ok := c.roleByID[id]
	if !ok {
		return models.Role{}, apperrors.NewNotFoundError("role", id)
	}
	return *r, nil
}

func (c *Catalog) Skills(roleID string) ([]models.Skill, error) {
	r, ok := c.roleByID[roleID]
	if !ok {
		return nil, apperrors.NewNotFoundError("role", roleID)
	}
	out := make([]models.Skill, len(r.Skills))
	copy(out, r.Skills)
	return out, nil
}

func (c *Catalog) Skill(id string) (models.Skill, error) {
	s, ok := c.skillByID[id]
	if !ok {
		return models.Skill{}, apperrors.NewNotFoundError("skill", id)
	}
	return *s, nil
}

func (c *Catalog) Tasks(skillID string) ([]models.Task, error) {
	s, ok := c.skillByID[skillID]
	if !ok {
		return nil, apperrors.NewNotFoundError("skill", skillID)
	}
	out := make([]models.Task, len(s.Tasks))
	copy(out, s.Tasks)
	return out, nil
}

func (c *Catalog) Task(id string) (models.Task, error) {
	t, ok := c.taskByID[id]
	if !ok {
		return models.Task{}, apperrors.NewNotFoundError("task", id)
	}
	return t, nil
}

// SkillOfTask returns the skill that owns taskID.
func (c *Catalog) SkillOfTask(taskID string) (models.Skill, error) {
	skillID, ok := c.skillOfTask[taskID]
	if !ok {
		return models.Skill{}, apperrors.NewNotFoundError("task", taskID)
	}
	return *c.skillByID[skillID], nil
}

// RoleOfSkill returns the id of the role that owns skillID.
func (c *Catalog) RoleOfSkill(skillID string) (string, error) {
	roleID, ok := c.roleOfSkill[skillID]
	if !ok {
		return "", apperrors.NewNotFoundError("skill", skillID)
	}
	return roleID, nil
}

// SelectedTask resolves a task into the denormalized selection tuple.
func (c *Catalog) SelectedTask(skillID, taskID string) (models.SelectedTask, error) {
	skill, ok := c.skillByID[skillID]
	if !ok {
		return models.SelectedTask{}, apperrors.NewNotFoundError("skill", skillID)
	}
	task, ok := skill.Task(taskID)
	if !ok {
		return models.SelectedTask{}, apperrors.NewNotFoundError("task", taskID)
	}
	return models.SelectedTask{
		SkillID:    skill.ID,
		SkillName:  skill.Name,
		TaskID:     task.ID,
		TaskName:   task.Name,
		Complexity: task.Complexity,
	}, nil
}

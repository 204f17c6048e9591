package handlers

import (
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/gamification"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/task"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
)

// Tasks
func TaskToResponse(t *task.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Points:      t.Priority.Points(),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CategoryID:  t.CategoryID,
		Tags:        TagsToResponse(t.Tags),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Category != nil {
		c := CategoryToResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

func TasksToResponse(tasks []task.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = TaskToResponse(&tasks[i])
	}
	return out
}

func CompletionToResponse(r *task.CompletionResult) dto.CompletionResponse {
	praise := make([]dto.PraiseResponse, len(r.Praise))
	for i, p := range r.Praise {
		praise[i] = dto.PraiseResponse{Kind: string(p.Kind), Message: p.Message}
	}
	return dto.CompletionResponse{
		Task:                 TaskToResponse(r.Task),
		PointsAwarded:        r.Point.Amount,
		TotalPoints:          r.TotalPoints,
		CurrentStreak:        r.Streak.CurrentStreak,
		LongestStreak:        r.Streak.LongestStreak,
		FirstOfDay:           r.FirstOfDay,
		UnlockedAchievements: AchievementsToResponse(r.Unlocked),
		Praise:               praise,
	}
}

func SubtaskToResponse(s *task.Subtask) dto.SubtaskResponse {
	return dto.SubtaskResponse{
		ID:          s.ID,
		TaskID:      s.TaskID,
		Title:       s.Title,
		Completed:   s.Completed,
		CompletedAt: s.CompletedAt,
		Order:       s.Order,
		CreatedAt:   s.CreatedAt,
	}
}

func SubtasksToResponse(subtasks []task.Subtask) []dto.SubtaskResponse {
	out := make([]dto.SubtaskResponse, len(subtasks))
	for i := range subtasks {
		out[i] = SubtaskToResponse(&subtasks[i])
	}
	return out
}

func NoteToResponse(n *task.TaskNote) dto.NoteResponse {
	return dto.NoteResponse{ID: n.ID, TaskID: n.TaskID, Content: n.Content, CreatedAt: n.CreatedAt}
}

func NotesToResponse(notes []task.TaskNote) []dto.NoteResponse {
	out := make([]dto.NoteResponse, len(notes))
	for i := range notes {
		out[i] = NoteToResponse(&notes[i])
	}
	return out
}

// Categories and tags
func CategoryToResponse(c *category.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Color:       c.Color,
		Icon:        c.Icon,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func CategoriesToResponse(categories []category.Category) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, len(categories))
	for i := range categories {
		out[i] = CategoryToResponse(&categories[i])
	}
	return out
}

func TagToResponse(t *tag.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color}
}

func TagsToResponse(tags []tag.Tag) []dto.TagResponse {
	out := make([]dto.TagResponse, len(tags))
	for i := range tags {
		out[i] = TagToResponse(&tags[i])
	}
	return out
}

// Users
func UserToResponse(u *user.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func SettingsToResponse(s *user.Settings) dto.SettingsResponse {
	return dto.SettingsResponse{
		Theme:               string(s.Theme),
		PraiseOnComplete:    s.PraiseOnComplete,
		PraiseOnStreak:      s.PraiseOnStreak,
		PraiseOnAchievement: s.PraiseOnAchievement,
		PraiseOnEarlyFinish: s.PraiseOnEarlyFinish,
		PraiseOnUrgent:      s.PraiseOnUrgent,
		PraiseOnFirstOfDay:  s.PraiseOnFirstOfDay,
		AnimationEnabled:    s.AnimationEnabled,
		UpdatedAt:           s.UpdatedAt,
	}
}

// Progress
func ProgressToResponse(p *gamification.Progress) dto.ProgressResponse {
	return dto.ProgressResponse{
		TotalPoints:    p.TotalPoints,
		CompletedTasks: p.CompletedTasks,
		CurrentStreak:  p.ActiveStreak,
		LongestStreak:  p.LongestStreak,
		LastActiveDate: p.LastActiveDate,
		Achievements:   AchievementsToResponse(p.Achievements),
	}
}

func AchievementsToResponse(achievements []gamification.Achievement) []dto.AchievementResponse {
	out := make([]dto.AchievementResponse, len(achievements))
	for i, a := range achievements {
		out[i] = dto.AchievementResponse{
			Type:        string(a.Type),
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			UnlockedAt:  a.UnlockedAt,
		}
	}
	return out
}

func CatalogToResponse(defs []gamification.Definition) []dto.AchievementDefinitionResponse {
	out := make([]dto.AchievementDefinitionResponse, len(defs))
	for i, d := range defs {
		out[i] = dto.AchievementDefinitionResponse{
			Type:        string(d.Type),
			Title:       d.Title,
			Description: d.Description,
			Icon:        d.Icon,
		}
	}
	return out
}

func PointsToResponse(points []gamification.Point) []dto.PointResponse {
	out := make([]dto.PointResponse, len(points))
	for i, p := range points {
		out[i] = dto.PointResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Reason:    string(p.Reason),
			TaskID:    p.TaskID,
			Note:      p.Note,
			CreatedAt: p.CreatedAt,
		}
	}
	return out
}

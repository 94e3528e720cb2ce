package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/logger"

	"github.com/xuri/excelize/v2"
)

type taskUsecase struct {
	tasks    domain.TaskRepository
	profiles domain.ProfileRepository
	policy   domain.TaskMutationPolicy
}

func NewTaskUsecase(tasks domain.TaskRepository, profiles domain.ProfileRepository, policy domain.TaskMutationPolicy) domain.TaskUsecase {
	return &taskUsecase{tasks: tasks, profiles: profiles, policy: policy}
}

func requireSession(sess *domain.Session) error {
	if sess == nil || sess.UserID == "" {
		return apperror.Unauthorized("Not signed in").WithRedirect(domain.RouteLogin)
	}
	return nil
}

// isAdmin treats a failed profile lookup as a regular user.
func (u *taskUsecase) isAdmin(ctx context.Context, userID string) bool {
	profile, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			logger.Log.Warn("role lookup failed", "user_id", userID, "error", err)
		}
		return false
	}
	return profile.IsAdmin()
}

func (u *taskUsecase) load(ctx context.Context, sess *domain.Session, isAdmin bool) (*domain.Dashboard, error) {
	owner := sess.UserID
	if isAdmin {
		owner = ""
	}
	tasks, err := u.tasks.List(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.Dashboard{
		User:    domain.DashboardUser{ID: sess.UserID, Email: sess.Email},
		IsAdmin: isAdmin,
		Tasks:   tasks,
		Buckets: domain.Partition(tasks),
	}, nil
}

func (u *taskUsecase) Load(ctx context.Context, sess *domain.Session) (*domain.Dashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return u.load(ctx, sess, u.isAdmin(ctx, sess.UserID))
}

func (u *taskUsecase) Add(ctx context.Context, sess *domain.Session, text string) (*domain.Dashboard, bool, error) {
	if err := requireSession(sess); err != nil {
		return nil, false, err
	}
	isAdmin := u.isAdmin(ctx, sess.UserID)

	text = strings.TrimSpace(text)
	if text == "" {
		d, err := u.load(ctx, sess, isAdmin)
		return d, false, err
	}

	task := &domain.Task{Task: text, Status: domain.TaskNotStarted, UserID: sess.UserID}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, false, apperror.Internal(err)
	}

	d, err := u.load(ctx, sess, isAdmin)
	return d, true, err
}

func (u *taskUsecase) ToggleStatus(ctx context.Context, sess *domain.Session, taskID int64) (*domain.Dashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	isAdmin := u.isAdmin(ctx, sess.UserID)
	owner := u.policy.OwnerFilter(sess.UserID, isAdmin)

	task, err := u.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, apperror.NotFound("Task not found")
		}
		return nil, apperror.Internal(err)
	}
	// Hide other users' rows the same way as missing ones.
	if owner != "" && task.UserID != owner {
		return nil, apperror.NotFound("Task not found")
	}

	if _, err := u.tasks.UpdateStatus(ctx, taskID, owner, task.Status.Toggle()); err != nil {
		return nil, apperror.Internal(err)
	}
	return u.load(ctx, sess, isAdmin)
}

func (u *taskUsecase) Delete(ctx context.Context, sess *domain.Session, taskID int64) (*domain.Dashboard, int64, error) {
	if err := requireSession(sess); err != nil {
		return nil, 0, err
	}
	isAdmin := u.isAdmin(ctx, sess.UserID)

	// Zero rows affected (already gone, or not ours under owner_or_admin) is not an error.
	affected, err := u.tasks.Delete(ctx, taskID, u.policy.OwnerFilter(sess.UserID, isAdmin))
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	d, err := u.load(ctx, sess, isAdmin)
	return d, affected, err
}

func (u *taskUsecase) Export(ctx context.Context, sess *domain.Session) ([]byte, string, error) {
	d, err := u.Load(ctx, sess)
	if err != nil {
		return nil, "", err
	}

	data, err := exportExcel(d.Buckets)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	filename := fmt.Sprintf("tasks_%s.xlsx", time.Now().Format("20060102_150405"))
	return data, filename, nil
}

var exportHeaders = []string{"ID", "TASK", "STATUS", "OWNER"}

// exportExcel writes one sheet per dashboard bucket.
func exportExcel(b domain.TaskBuckets) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name  string
		tasks []domain.Task
	}{
		{"Today", b.Today},
		{"Completed", b.Completed},
		{"Pending", b.Pending},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}

		for col, h := range exportHeaders {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(s.name, cell, h)
		}
		endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(s.name, "A1", endCell, headerStyle)

		for row, t := range s.tasks {
			values := []interface{}{t.ID, t.Task, string(t.Status), t.UserID}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(s.name, cell, v)
			}
		}
		f.SetColWidth(s.name, "A", "A", 8)
		f.SetColWidth(s.name, "B", "B", 40)
		f.SetColWidth(s.name, "C", "D", 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

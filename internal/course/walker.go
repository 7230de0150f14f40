// Package course walks a course's items: videos are marked watched, readings
// completed, and graded items handed to a solver.
package course

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/assessment"
	"github.com/skipera/skipera/internal/remote"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrCourseNotFound   = errors.New("course not found")
)

const (
	modulesKey = `onDemandCourseMaterialModules\.v1`
	itemsKey   = `onDemandCourseMaterialItems\.v2`
)

// Session is the subset of *remote.Session the walker uses.
type Session interface {
	GetJSON(ctx context.Context, path string, query url.Values) (*remote.Response, error)
	PostJSON(ctx context.Context, path string, query url.Values, body any) (*remote.Response, error)
}

// ItemSolver solves one graded item.
type ItemSolver interface {
	Solve(ctx context.Context, ref assessment.Ref) (*assessment.Result, error)
}

// Module is a top-level course section.
type Module struct {
	ID   string
	Name string
}

// Item is one piece of course content.
type Item struct {
	ID   string
	Name string
	Slug string
}

// Materials is a course's outline.
type Materials struct {
	CourseID string
	Modules  []Module
	Items    []Item
}

// Summary counts what a walk did.
type Summary struct {
	Videos   int
	Readings int
	Solved   int
	Skipped  int
	Failed   int
	Results  []*assessment.Result
}

// Walker visits every item of a course.
type Walker struct {
	session Session
	solver  ItemSolver
	logger  *zap.Logger
	userID  string
}

// NewWalker returns a Walker. A nil solver disables solving; graded items are
// then skipped with a warning.
func NewWalker(session Session, solver ItemSolver, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{session: session, solver: solver, logger: logger.Named("course")}
}

// UserID resolves the authenticated user. The result is cached.
func (w *Walker) UserID(ctx context.Context) (string, error) {
	if w.userID != "" {
		return w.userID, nil
	}

	resp, err := w.session.GetJSON(ctx, "adminUserPermissions.v1", url.Values{"q": {"my"}})
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}

	body := resp.JSON()
	id := body.Get("elements.0.id")
	if !id.Exists() || id.String() == "" {
		if code := body.Get("errorCode").String(); code != "" {
			return "", fmt.Errorf("%w: %s; session cookies are likely expired or invalid", ErrNotAuthenticated, code)
		}
		return "", fmt.Errorf("%w: no user id in response; session cookies are likely expired or invalid", ErrNotAuthenticated)
	}

	w.userID = id.String()
	w.logger.Info("authenticated", zap.String("user_id", w.userID))
	return w.userID, nil
}

// Materials fetches the module and item outline of the course at slug.
func (w *Walker) Materials(ctx context.Context, slug string) (*Materials, error) {
	resp, err := w.session.GetJSON(ctx, "onDemandCourseMaterials.v2/", url.Values{
		"q":        {"slug"},
		"slug":     {slug},
		"includes": {"modules"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch modules: %w", err)
	}
	body := resp.JSON()
	courseID := body.Get("elements.0.id").String()
	if courseID == "" {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, slug)
	}

	m := &Materials{CourseID: courseID}
	body.Get("linked." + modulesKey).ForEach(func(_, v gjson.Result) bool {
		m.Modules = append(m.Modules, Module{ID: v.Get("id").String(), Name: v.Get("name").String()})
		return true
	})

	resp, err = w.session.GetJSON(ctx, "onDemandCourseMaterials.v2/", url.Values{
		"q":               {"slug"},
		"slug":            {slug},
		"includes":        {"passableItemGroups,passableItemGroupChoices,items,tracks,gradePolicy,gradingParameters"},
		"fields":          {"onDemandCourseMaterialItems.v2(name,slug,timeCommitment,trackId)"},
		"showLockedItems": {"true"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	resp.JSON().Get("linked." + itemsKey).ForEach(func(_, v gjson.Result) bool {
		m.Items = append(m.Items, Item{
			ID:   v.Get("id").String(),
			Name: v.Get("name").String(),
			Slug: v.Get("slug").String(),
		})
		return true
	})
	return m, nil
}

// CompleteVideo reports the lecture at itemID as watched. It returns false
// when the item is not a lecture.
func (w *Walker) CompleteVideo(ctx context.Context, slug, itemID string) (bool, error) {
	uid, err := w.UserID(ctx)
	if err != nil {
		return false, err
	}

	path := fmt.Sprintf("opencourse.v1/user/%s/course/%s/item/%s/lecture/videoEvents/ended",
		url.PathEscape(uid), url.PathEscape(slug), url.PathEscape(itemID))
	resp, err := w.session.PostJSON(ctx, path, url.Values{"autoEnroll": {"false"}},
		map[string]any{"contentRequestBody": map[string]any{}})
	if err != nil {
		return false, fmt.Errorf("complete video %s: %w", itemID, err)
	}

	r := resp.JSON().Get("contentResponseBody")
	return r.Exists() && r.Type != gjson.Null, nil
}

// CompleteReading marks the supplement at itemID as read. It returns false
// when the item is not a reading.
func (w *Walker) CompleteReading(ctx context.Context, courseID, itemID string) (bool, error) {
	uid, err := w.UserID(ctx)
	if err != nil {
		return false, err
	}
	numericID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return false, fmt.Errorf("user id %q is not numeric: %w", uid, err)
	}

	resp, err := w.session.PostJSON(ctx, "onDemandSupplementCompletions.v1", nil, map[string]any{
		"courseId": courseID,
		"itemId":   itemID,
		"userId":   numericID,
	})
	if err != nil {
		return false, fmt.Errorf("complete reading %s: %w", itemID, err)
	}
	return resp.Contains("Completed"), nil
}

// Run walks every item of the course at slug. Item failures are counted and
// logged; only authentication, outline or context errors end the walk.
func (w *Walker) Run(ctx context.Context, slug string) (*Summary, error) {
	if _, err := w.UserID(ctx); err != nil {
		return nil, err
	}
	mats, err := w.Materials(ctx, slug)
	if err != nil {
		return nil, err
	}

	log := w.logger.With(zap.String("course_id", mats.CourseID), zap.String("slug", slug))
	log.Info("course outline loaded", zap.Int("modules", len(mats.Modules)), zap.Int("items", len(mats.Items)))
	for _, m := range mats.Modules {
		log.Debug("module", zap.String("module_id", m.ID), zap.String("name", m.Name))
	}

	sum := &Summary{}
	for _, item := range mats.Items {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := w.visit(ctx, log, slug, mats.CourseID, item, sum); err != nil {
			return sum, err
		}
	}

	log.Info("course walk finished",
		zap.Int("videos", sum.Videos),
		zap.Int("readings", sum.Readings),
		zap.Int("solved", sum.Solved),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

// visit handles one item. Only context cancellation is returned.
func (w *Walker) visit(ctx context.Context, log *zap.Logger, slug, courseID string, item Item, sum *Summary) error {
	log = log.With(zap.String("item_id", item.ID), zap.String("item", item.Name))
	log.Info("processing item")

	watched, err := w.CompleteVideo(ctx, slug, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("video completion failed", zap.Error(err))
		sum.Failed++
		return nil
	}
	if watched {
		sum.Videos++
		return nil
	}
	log.Debug("not a lecture, trying as a reading")

	read, err := w.CompleteReading(ctx, courseID, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("reading completion failed", zap.Error(err))
		sum.Failed++
		return nil
	}
	if read {
		sum.Readings++
		return nil
	}
	log.Debug("not a reading, assuming a graded item")

	if w.solver == nil {
		log.Warn("item is a quiz or assignment but solving is disabled, skipping")
		sum.Skipped++
		return nil
	}

	res, err := w.solver.Solve(ctx, assessment.Ref{CourseID: courseID, ItemID: item.ID})
	if err != nil {
		return err
	}
	sum.Results = append(sum.Results, res)
	switch {
	case res.Submitted():
		sum.Solved++
	case res.Skipped():
		sum.Skipped++
	default:
		sum.Failed++
	}
	return nil
}

package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/events"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/storage"
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore backs every fake repository. The fake transactor snapshots it
// and restores the snapshot when the transaction function fails.
type memStore struct {
	mu sync.Mutex

	users      map[primitive.ObjectID]domain.User
	activities map[primitive.ObjectID]domain.Activity
	sessions   map[primitive.ObjectID]domain.Session
	tutorials  map[primitive.ObjectID]domain.Tutorial
	checkIns   map[primitive.ObjectID]domain.CheckIn
	posts      map[primitive.ObjectID]domain.ForumPost
	comments   map[primitive.ObjectID]domain.ForumComment
	likes      map[primitive.ObjectID]domain.ForumLike
	uploads    map[primitive.ObjectID]domain.Upload
	revoked    map[string]domain.RevokedToken

	// Injected failures, consumed by the next matching call.
	addParticipantErr error
	deductCreditsErr  error

	// beforeSwapAccess runs once inside the next SwapAccessStatus, ahead of
	// the comparison, to stand in for a concurrent writer.
	beforeSwapAccess func(u *domain.User)
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[primitive.ObjectID]domain.User{},
		activities: map[primitive.ObjectID]domain.Activity{},
		sessions:   map[primitive.ObjectID]domain.Session{},
		tutorials:  map[primitive.ObjectID]domain.Tutorial{},
		checkIns:   map[primitive.ObjectID]domain.CheckIn{},
		posts:      map[primitive.ObjectID]domain.ForumPost{},
		comments:   map[primitive.ObjectID]domain.ForumComment{},
		likes:      map[primitive.ObjectID]domain.ForumLike{},
		uploads:    map[primitive.ObjectID]domain.Upload{},
		revoked:    map[string]domain.RevokedToken{},
	}
}

func cloneMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func same[V any](v V) V { return v }

func cloneSession(s domain.Session) domain.Session {
	s.ParticipantIDs = append([]primitive.ObjectID{}, s.ParticipantIDs...)
	return s
}

func cloneTutorial(t domain.Tutorial) domain.Tutorial {
	t.Exercises = append([]domain.Exercise{}, t.Exercises...)
	t.DietPlans = append([]domain.DietPlan{}, t.DietPlans...)
	return t
}

func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memStore{
		users:      cloneMap(m.users, same[domain.User]),
		activities: cloneMap(m.activities, same[domain.Activity]),
		sessions:   cloneMap(m.sessions, cloneSession),
		tutorials:  cloneMap(m.tutorials, cloneTutorial),
		checkIns:   cloneMap(m.checkIns, same[domain.CheckIn]),
		posts:      cloneMap(m.posts, same[domain.ForumPost]),
		comments:   cloneMap(m.comments, same[domain.ForumComment]),
		likes:      cloneMap(m.likes, same[domain.ForumLike]),
		uploads:    cloneMap(m.uploads, same[domain.Upload]),
		revoked:    cloneMap(m.revoked, same[domain.RevokedToken]),
	}
}

func (m *memStore) restore(s *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.activities, m.sessions, m.tutorials = s.users, s.activities, s.sessions, s.tutorials
	m.checkIns, m.posts, m.comments, m.likes = s.checkIns, s.posts, s.comments, s.likes
	m.uploads, m.revoked = s.uploads, s.revoked
}

// --- Transactor ---

type fakeTransactor struct {
	store   *memStore
	commits int
	aborts  int
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		t.aborts++
		return err
	}
	t.commits++
	return nil
}

// --- Pagination ---

// pageOf returns the first page only; any cursor is treated as foreign.
func pageOf[T any](items []T, less func(a, b T) bool, page repository.PageRequest) (*repository.Page[T], error) {
	page = page.Normalized()
	if page.Cursor != "" {
		return nil, repository.ErrInvalidCursor
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	result := &repository.Page[T]{Items: items}
	if len(items) > page.Limit {
		result.Items = items[:page.Limit]
		result.NextCursor = "next"
	}
	return result, nil
}

// --- Users ---

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.MemberSince.IsZero() {
		user.MemberSince = now
	}
	if user.AccessStatus == "" {
		user.AccessStatus = domain.AccessGreen
	}
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter, page repository.PageRequest) (*repository.Page[domain.User], error) {
	r.s.mu.Lock()
	var items []domain.User
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.AccessStatus != "" && u.AccessStatus != filter.AccessStatus {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, u)
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.User) bool { return a.CreatedAt.After(b.CreatedAt) }, page)
}

func (r *fakeUserRepo) mutate(id primitive.ObjectID, fn func(u *domain.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	r.s.users[id] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	return r.mutate(user.ID, func(u *domain.User) error {
		u.Name, u.Role, u.Credits = user.Name, user.Role, user.Credits
		u.Height, u.Weight, u.Birthday, u.Sex = user.Height, user.Weight, user.Birthday, user.Sex
		u.Observations = user.Observations
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	return r.mutate(user.ID, func(u *domain.User) error {
		u.Name, u.Height, u.Weight, u.Birthday, u.Sex = user.Name, user.Height, user.Weight, user.Birthday, user.Sex
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *fakeUserRepo) SetAccessStatus(_ context.Context, id primitive.ObjectID, status domain.AccessStatus) error {
	return r.mutate(id, func(u *domain.User) error {
		u.AccessStatus = status
		return nil
	})
}

func (r *fakeUserRepo) SwapAccessStatus(_ context.Context, id primitive.ObjectID, from, to domain.AccessStatus) error {
	return r.mutate(id, func(u *domain.User) error {
		if hook := r.s.beforeSwapAccess; hook != nil {
			r.s.beforeSwapAccess = nil
			hook(u)
		}
		if u.AccessStatus != from {
			return repository.ErrConflict
		}
		u.AccessStatus = to
		return nil
	})
}

func (r *fakeUserRepo) DeductCredits(_ context.Context, id primitive.ObjectID, amount int) error {
	if err := r.s.deductCreditsErr; err != nil {
		r.s.deductCreditsErr = nil
		return err
	}
	return r.mutate(id, func(u *domain.User) error {
		if u.Credits < amount {
			return repository.ErrConflict
		}
		u.Credits -= amount
		return nil
	})
}

func (r *fakeUserRepo) AddCredits(_ context.Context, id primitive.ObjectID, amount int) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Credits += amount
		return nil
	})
}

func (r *fakeUserRepo) TouchLastActive(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.mutate(id, func(u *domain.User) error {
		u.LastActive = &at
		return nil
	})
}

// --- Activities ---

type fakeActivityRepo struct{ s *memStore }

func (r *fakeActivityRepo) Create(_ context.Context, a *domain.Activity) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.CreatedAt, a.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.s.activities[a.ID] = *a
	return a.ID, nil
}

func (r *fakeActivityRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter, page repository.PageRequest) (*repository.Page[domain.Activity], error) {
	r.s.mu.Lock()
	var items []domain.Activity
	for _, a := range r.s.activities {
		if filter.Type == "" || a.Type == filter.Type {
			items = append(items, a)
		}
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.Activity) bool { return a.CreatedAt.After(b.CreatedAt) }, page)
}

func (r *fakeActivityRepo) Update(_ context.Context, a *domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.activities[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.s.activities[a.ID] = *a
	return nil
}

func (r *fakeActivityRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.activities, id)
	return nil
}

// --- Sessions ---

type fakeSessionRepo struct{ s *memStore }

func (r *fakeSessionRepo) Create(_ context.Context, sess *domain.Session) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess.ID = primitive.NewObjectID()
	sess.CreatedAt, sess.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	sess.ParticipantIDs = []primitive.ObjectID{}
	sess.BookedCount = 0
	r.s.sessions[sess.ID] = cloneSession(*sess)
	return sess.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sess = cloneSession(sess)
	return &sess, nil
}

func (r *fakeSessionRepo) List(_ context.Context, filter repository.SessionFilter, page repository.PageRequest) (*repository.Page[domain.Session], error) {
	r.s.mu.Lock()
	var items []domain.Session
	for _, sess := range r.s.sessions {
		if filter.ActivityID != nil && sess.ActivityID != *filter.ActivityID {
			continue
		}
		if filter.From != nil && sess.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !sess.StartTime.Before(*filter.To) {
			continue
		}
		items = append(items, cloneSession(sess))
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.Session) bool { return a.StartTime.Before(b.StartTime) }, page)
}

func (r *fakeSessionRepo) Update(_ context.Context, sess *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.sessions[sess.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.BookedCount > sess.Capacity {
		return repository.ErrConflict
	}
	cur.ActivityID, cur.ActivityName, cur.Title, cur.Description = sess.ActivityID, sess.ActivityName, sess.Title, sess.Description
	cur.StartTime, cur.EndTime, cur.Capacity = sess.StartTime, sess.EndTime, sess.Capacity
	cur.Location, cur.InstructorName = sess.Location, sess.InstructorName
	r.s.sessions[sess.ID] = cur
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

func (r *fakeSessionRepo) AddParticipant(_ context.Context, sessionID, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.addParticipantErr; err != nil {
		r.s.addParticipantErr = nil
		return err
	}
	sess, ok := r.s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if sess.HasParticipant(userID) || sess.BookedCount >= sess.Capacity {
		return repository.ErrConflict
	}
	sess = cloneSession(sess)
	sess.ParticipantIDs = append(sess.ParticipantIDs, userID)
	sess.BookedCount++
	r.s.sessions[sessionID] = sess
	return nil
}

func (r *fakeSessionRepo) CountByActivity(_ context.Context, activityID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sess := range r.s.sessions {
		if sess.ActivityID == activityID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) RenameActivity(_ context.Context, activityID primitive.ObjectID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sess := range r.s.sessions {
		if sess.ActivityID == activityID {
			sess.ActivityName = name
			r.s.sessions[id] = sess
		}
	}
	return nil
}

// --- Tutorials ---

type fakeTutorialRepo struct{ s *memStore }

func (r *fakeTutorialRepo) Create(_ context.Context, t *domain.Tutorial) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	t.Version = 1
	r.s.tutorials[t.ID] = cloneTutorial(*t)
	return t.ID, nil
}

func (r *fakeTutorialRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Tutorial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tutorials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTutorial(t)
	return &t, nil
}

func (r *fakeTutorialRepo) List(_ context.Context, filter repository.TutorialFilter, page repository.PageRequest) (*repository.Page[domain.Tutorial], error) {
	r.s.mu.Lock()
	var items []domain.Tutorial
	for _, t := range r.s.tutorials {
		if filter.Section == "" || t.Section == filter.Section {
			items = append(items, cloneTutorial(t))
		}
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.Tutorial) bool { return a.CreatedAt.After(b.CreatedAt) }, page)
}

func (r *fakeTutorialRepo) versioned(id primitive.ObjectID, expected int64, fn func(t *domain.Tutorial)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tutorials[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Version != expected {
		return repository.ErrConflict
	}
	t = cloneTutorial(t)
	fn(&t)
	t.Version++
	r.s.tutorials[id] = t
	return nil
}

func (r *fakeTutorialRepo) Update(_ context.Context, t *domain.Tutorial, expectedVersion int64) error {
	return r.versioned(t.ID, expectedVersion, func(cur *domain.Tutorial) {
		cur.Title, cur.Description, cur.Content, cur.Section = t.Title, t.Description, t.Content, t.Section
		cur.ImageURL, cur.VideoURL = t.ImageURL, t.VideoURL
	})
}

func (r *fakeTutorialRepo) ReplaceExercises(_ context.Context, id primitive.ObjectID, expectedVersion int64, exercises []domain.Exercise) error {
	return r.versioned(id, expectedVersion, func(cur *domain.Tutorial) {
		cur.Exercises = append([]domain.Exercise{}, exercises...)
	})
}

func (r *fakeTutorialRepo) ReplaceDietPlans(_ context.Context, id primitive.ObjectID, expectedVersion int64, plans []domain.DietPlan) error {
	return r.versioned(id, expectedVersion, func(cur *domain.Tutorial) {
		cur.DietPlans = append([]domain.DietPlan{}, plans...)
	})
}

func (r *fakeTutorialRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tutorials[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tutorials, id)
	return nil
}

// --- Check-ins ---

type fakeCheckInRepo struct{ s *memStore }

func (r *fakeCheckInRepo) Create(_ context.Context, c *domain.CheckIn) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.checkIns {
		if existing.UserID == c.UserID && existing.Date == c.Date {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	r.s.checkIns[c.ID] = *c
	return c.ID, nil
}

func (r *fakeCheckInRepo) ExistsForDate(_ context.Context, userID primitive.ObjectID, date string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.checkIns {
		if c.UserID == userID && c.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCheckInRepo) ListByUser(_ context.Context, userID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.CheckIn], error) {
	r.s.mu.Lock()
	var items []domain.CheckIn
	for _, c := range r.s.checkIns {
		if c.UserID == userID {
			items = append(items, c)
		}
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.CheckIn) bool { return a.Date > b.Date }, page)
}

// --- Forum ---

type fakePostRepo struct{ s *memStore }

func (r *fakePostRepo) Create(_ context.Context, p *domain.ForumPost) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.s.posts[p.ID] = *p
	return p.ID, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ForumPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakePostRepo) List(_ context.Context, page repository.PageRequest) (*repository.Page[domain.ForumPost], error) {
	r.s.mu.Lock()
	var items []domain.ForumPost
	for _, p := range r.s.posts {
		items = append(items, p)
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.ForumPost) bool { return a.CreatedAt.After(b.CreatedAt) }, page)
}

func (r *fakePostRepo) Update(_ context.Context, p *domain.ForumPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title, cur.Content, cur.ImageURL = p.Title, p.Content, p.ImageURL
	r.s.posts[p.ID] = cur
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *fakePostRepo) increment(id primitive.ObjectID, delta int, field func(p *domain.ForumPost) *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	counter := field(&p)
	if *counter+delta < 0 {
		return repository.ErrConflict
	}
	*counter += delta
	r.s.posts[id] = p
	return nil
}

func (r *fakePostRepo) IncrementLikes(_ context.Context, id primitive.ObjectID, delta int) error {
	return r.increment(id, delta, func(p *domain.ForumPost) *int { return &p.LikeCount })
}

func (r *fakePostRepo) IncrementComments(_ context.Context, id primitive.ObjectID, delta int) error {
	return r.increment(id, delta, func(p *domain.ForumPost) *int { return &p.CommentCount })
}

type fakeCommentRepo struct{ s *memStore }

func (r *fakeCommentRepo) Create(_ context.Context, c *domain.ForumComment) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	r.s.comments[c.ID] = *c
	return c.ID, nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ForumComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.ForumComment], error) {
	r.s.mu.Lock()
	var items []domain.ForumComment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			items = append(items, c)
		}
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.ForumComment) bool { return a.CreatedAt.After(b.CreatedAt) }, page)
}

func (r *fakeCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
		}
	}
	return nil
}

type fakeLikeRepo struct{ s *memStore }

func (r *fakeLikeRepo) Create(_ context.Context, l *domain.ForumLike) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.likes {
		if existing.PostID == l.PostID && existing.UserID == l.UserID {
			return repository.ErrDuplicate
		}
	}
	l.ID = primitive.NewObjectID()
	l.CreatedAt = time.Now().UTC()
	r.s.likes[l.ID] = *l
	return nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, postID, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.likes {
		if l.PostID == postID && l.UserID == userID {
			delete(r.s.likes, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeLikeRepo) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.likes {
		if l.PostID == postID {
			delete(r.s.likes, id)
		}
	}
	return nil
}

func (r *fakeLikeRepo) LikedPostIDs(_ context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[primitive.ObjectID]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	out := map[primitive.ObjectID]bool{}
	for _, l := range r.s.likes {
		if l.UserID == userID && wanted[l.PostID] {
			out[l.PostID] = true
		}
	}
	return out, nil
}

// --- Uploads and tokens ---

type fakeUploadRepo struct{ s *memStore }

func (r *fakeUploadRepo) Create(_ context.Context, u *domain.Upload) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.uploads {
		if existing.ObjectKey == u.ObjectKey {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.UploadedAt = time.Now().UTC()
	r.s.uploads[u.ID] = *u
	return u.ID, nil
}

func (r *fakeUploadRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUploadRepo) ListByFolder(_ context.Context, folder string, page repository.PageRequest) (*repository.Page[domain.Upload], error) {
	r.s.mu.Lock()
	var items []domain.Upload
	for _, u := range r.s.uploads {
		if folder == "" || u.Folder == folder {
			items = append(items, u)
		}
	}
	r.s.mu.Unlock()
	return pageOf(items, func(a, b domain.Upload) bool { return a.UploadedAt.After(b.UploadedAt) }, page)
}

func (r *fakeUploadRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.uploads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.uploads, id)
	return nil
}

type fakeTokenRepo struct{ s *memStore }

func (r *fakeTokenRepo) Revoke(_ context.Context, t *domain.RevokedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revoked[t.JTI] = *t
	return nil
}

func (r *fakeTokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.revoked[jti]
	return ok, nil
}

// --- Publisher ---

type fakePublisher struct {
	joined   []events.SessionJoinedEvent
	checkIns []events.CheckInRecordedEvent
	liked    []events.PostLikedEvent
}

func (p *fakePublisher) PublishSessionJoined(e events.SessionJoinedEvent) error {
	p.joined = append(p.joined, e)
	return nil
}

func (p *fakePublisher) PublishCheckInRecorded(e events.CheckInRecordedEvent) error {
	p.checkIns = append(p.checkIns, e)
	return nil
}

func (p *fakePublisher) PublishPostLiked(e events.PostLikedEvent) error {
	p.liked = append(p.liked, e)
	return nil
}

func (p *fakePublisher) Close() {}

// --- File storage ---

type fakeFileStorage struct {
	objects map[string]storage.ObjectInfo
	putErr  error
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{objects: map[string]storage.ObjectInfo{}}
}

func (f *fakeFileStorage) PutObject(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return err
	}
	f.objects[key] = storage.ObjectInfo{Size: n, ContentType: contentType}
	return nil
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://s3.test/upload/" + key + "?sig=x", nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/download/" + key + "?sig=x", nil
}

func (f *fakeFileStorage) StatObject(_ context.Context, key string) (*storage.ObjectInfo, error) {
	info, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &info, nil
}

func (f *fakeFileStorage) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeFileStorage) ObjectURL(key string) string {
	return "https://cdn.test/" + key
}

// --- Fixture ---

type fixture struct {
	store      *memStore
	tx         *fakeTransactor
	publisher  *fakePublisher
	users      *fakeUserRepo
	activities *fakeActivityRepo
	sessions   *fakeSessionRepo
	tutorials  *fakeTutorialRepo
	checkIns   *fakeCheckInRepo
	posts      *fakePostRepo
	comments   *fakeCommentRepo
	likes      *fakeLikeRepo
	uploads    *fakeUploadRepo
	tokens     *fakeTokenRepo
}

func newFixture() *fixture {
	s := newMemStore()
	return &fixture{
		store:      s,
		tx:         &fakeTransactor{store: s},
		publisher:  &fakePublisher{},
		users:      &fakeUserRepo{s},
		activities: &fakeActivityRepo{s},
		sessions:   &fakeSessionRepo{s},
		tutorials:  &fakeTutorialRepo{s},
		checkIns:   &fakeCheckInRepo{s},
		posts:      &fakePostRepo{s},
		comments:   &fakeCommentRepo{s},
		likes:      &fakeLikeRepo{s},
		uploads:    &fakeUploadRepo{s},
		tokens:     &fakeTokenRepo{s},
	}
}

func (f *fixture) seedUser(name string, role domain.Role, credits int) domain.User {
	u := &domain.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@gym.test",
		PasswordHash: "x",
		Role:         role,
		Credits:      credits,
	}
	if _, err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return *u
}

func (f *fixture) seedActivity(name string, cost int) domain.Activity {
	a := &domain.Activity{Name: name, Type: domain.ActivityYoga, CreditValue: cost}
	if _, err := f.activities.Create(context.Background(), a); err != nil {
		panic(err)
	}
	return *a
}

func (f *fixture) seedSession(activity domain.Activity, capacity int, start time.Time) domain.Session {
	sess := &domain.Session{
		ActivityID:   activity.ID,
		ActivityName: activity.Name,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Capacity:     capacity,
	}
	if _, err := f.sessions.Create(context.Background(), sess); err != nil {
		panic(err)
	}
	return *sess
}

func (f *fixture) user(id primitive.ObjectID) domain.User {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.users[id]
}

func (f *fixture) session(id primitive.ObjectID) domain.Session {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return cloneSession(f.store.sessions[id])
}

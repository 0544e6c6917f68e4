package authoring

import (
	"fmt"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/transient"
)

// LessonPatch carries the lesson fields to change. Nil fields are untouched.
type LessonPatch struct {
	Title       *string             `json:"title"`
	VideoURL    *string             `json:"videoUrl"`
	InputMethod *entity.InputMethod `json:"videoInputMethod"`
}

// ResourcePatch carries the resource fields to change. Nil fields are untouched.
type ResourcePatch struct {
	Name        *string              `json:"name"`
	Type        *entity.ResourceType `json:"type"`
	FileURL     *string              `json:"fileUrl"`
	InputMethod *entity.InputMethod  `json:"resourceInputMethod"`
	AccessType  *entity.AccessType   `json:"accessType"`
}

// ResourceScope selects which resource list an operation works on. The zero
// value is the product's standalone list; LessonID selects a course lesson and
// DayID plus LessonID a lesson of a school day.
type ResourceScope struct {
	DayID    string `json:"dayId,omitempty"`
	LessonID string `json:"lessonId,omitempty"`
}

// IsStandalone reports whether the scope is the product-level list.
func (s ResourceScope) IsStandalone() bool {
	return s.LessonID == ""
}

func newLesson() entity.Lesson {
	return entity.Lesson{
		ID:          entity.NewID(),
		Resources:   []entity.Resource{},
		InputMethod: entity.InputUpload,
	}
}

func newResource() entity.Resource {
	return entity.Resource{
		ID:          entity.NewID(),
		Type:        entity.ResourceFile,
		InputMethod: entity.InputUpload,
		AccessType:  entity.AccessDownload,
	}
}

// AddLesson appends an empty lesson to the course.
func (d *Draft) AddLesson() (entity.Lesson, error) {
	return d.AddLessonToDay("")
}

// EditLesson updates a course lesson.
func (d *Draft) EditLesson(lessonID string, p LessonPatch) error {
	return d.EditDayLesson("", lessonID, p)
}

// DeleteLesson removes a course lesson and releases its uploads.
func (d *Draft) DeleteLesson(lessonID string) error {
	return d.DeleteLessonFromDay("", lessonID)
}

// AddSchoolDay appends a day numbered after the current last one.
func (d *Draft) AddSchoolDay() (entity.SchoolDay, error) {
	if err := d.touch(); err != nil {
		return entity.SchoolDay{}, err
	}

	n := 1
	for _, existing := range d.schoolDays {
		if existing.Day >= n {
			n = existing.Day + 1
		}
	}
	day := entity.SchoolDay{
		ID:      entity.NewID(),
		Day:     n,
		Title:   fmt.Sprintf("Day %d", n),
		Lessons: []entity.Lesson{},
	}
	d.schoolDays = appended(d.schoolDays, day)

	return day, nil
}

// RenameSchoolDay changes a day's title.
func (d *Draft) RenameSchoolDay(dayID, title string) error {
	if err := d.touch(); err != nil {
		return err
	}

	i := indexOf(d.schoolDays, dayID, func(day entity.SchoolDay) string { return day.ID })
	if i < 0 {
		return domainerrors.ErrSchoolDayNotFound
	}
	day := d.schoolDays[i]
	day.Title = title
	d.schoolDays = replaced(d.schoolDays, i, day)

	return nil
}

// DeleteSchoolDay removes a day with all its lessons and releases their uploads.
func (d *Draft) DeleteSchoolDay(dayID string) error {
	if err := d.touch(); err != nil {
		return err
	}

	i := indexOf(d.schoolDays, dayID, func(day entity.SchoolDay) string { return day.ID })
	if i < 0 {
		return domainerrors.ErrSchoolDayNotFound
	}
	for _, l := range d.schoolDays[i].Lessons {
		d.releaseLesson(l)
	}
	d.schoolDays = removed(d.schoolDays, i)

	return nil
}

// AddLessonToDay appends an empty lesson to a school day, or to the course
// when dayID is empty.
func (d *Draft) AddLessonToDay(dayID string) (entity.Lesson, error) {
	if err := d.touch(); err != nil {
		return entity.Lesson{}, err
	}

	lesson := newLesson()
	err := d.updateLessons(dayID, func(lessons []entity.Lesson) ([]entity.Lesson, error) {
		return appended(lessons, lesson), nil
	})
	if err != nil {
		return entity.Lesson{}, err
	}

	return lesson, nil
}

// EditDayLesson updates a lesson of a school day, or of the course when
// dayID is empty.
func (d *Draft) EditDayLesson(dayID, lessonID string, p LessonPatch) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateLesson(dayID, lessonID, func(l entity.Lesson) entity.Lesson {
		if p.Title != nil {
			l.Title = *p.Title
		}
		if p.InputMethod != nil {
			l.InputMethod = *p.InputMethod
		}
		if p.VideoURL != nil {
			d.objects.Replace(l.VideoURL, *p.VideoURL)
			l.VideoURL = *p.VideoURL
			l.VideoFileName = ""
		}

		return l
	})
}

// DeleteLessonFromDay removes a lesson of a school day, or of the course when
// dayID is empty, and releases its uploads.
func (d *Draft) DeleteLessonFromDay(dayID, lessonID string) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateLessons(dayID, func(lessons []entity.Lesson) ([]entity.Lesson, error) {
		i := indexOf(lessons, lessonID, func(l entity.Lesson) string { return l.ID })
		if i < 0 {
			return nil, domainerrors.ErrLessonNotFound
		}
		d.releaseLesson(lessons[i])

		return removed(lessons, i), nil
	})
}

// AttachLessonVideo sets a lesson's video. An empty attachment clears it.
func (d *Draft) AttachLessonVideo(dayID, lessonID string, a transient.Attachment) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateLesson(dayID, lessonID, func(l entity.Lesson) entity.Lesson {
		d.objects.Acquire(a)
		d.objects.Replace(l.VideoURL, a.URL)
		l.VideoURL = a.URL
		l.VideoFileName = a.FileName
		l.InputMethod = inputMethodOf(a, l.InputMethod)

		return l
	})
}

// AddResource appends an empty file resource to the list selected by scope.
func (d *Draft) AddResource(scope ResourceScope) (entity.Resource, error) {
	if err := d.touch(); err != nil {
		return entity.Resource{}, err
	}

	res := newResource()
	err := d.updateResources(scope, func(list []entity.Resource) ([]entity.Resource, error) {
		return appended(list, res), nil
	})
	if err != nil {
		return entity.Resource{}, err
	}

	return res, nil
}

// EditResource updates one resource of the list selected by scope.
func (d *Draft) EditResource(scope ResourceScope, resourceID string, p ResourcePatch) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateResource(scope, resourceID, func(r entity.Resource) entity.Resource {
		if p.Name != nil {
			r.Name = *p.Name
		}
		if p.Type != nil {
			r.Type = *p.Type
		}
		if p.InputMethod != nil {
			r.InputMethod = *p.InputMethod
		}
		if p.AccessType != nil {
			r.AccessType = *p.AccessType
		}
		if p.FileURL != nil {
			d.objects.Replace(r.FileURL, *p.FileURL)
			r.FileURL = *p.FileURL
			r.FileName = ""
		}

		return r
	})
}

// DeleteResource removes a resource and releases its upload.
func (d *Draft) DeleteResource(scope ResourceScope, resourceID string) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateResources(scope, func(list []entity.Resource) ([]entity.Resource, error) {
		i := indexOf(list, resourceID, func(r entity.Resource) string { return r.ID })
		if i < 0 {
			return nil, domainerrors.ErrResourceNotFound
		}
		d.objects.Release(list[i].FileURL)

		return removed(list, i), nil
	})
}

// AttachResourceFile sets the file behind a resource. An empty attachment clears it.
func (d *Draft) AttachResourceFile(scope ResourceScope, resourceID string, a transient.Attachment) error {
	if err := d.touch(); err != nil {
		return err
	}

	return d.updateResource(scope, resourceID, func(r entity.Resource) entity.Resource {
		d.objects.Acquire(a)
		d.objects.Replace(r.FileURL, a.URL)
		r.FileURL = a.URL
		r.FileName = a.FileName
		r.InputMethod = inputMethodOf(a, r.InputMethod)

		return r
	})
}

// inputMethodOf reports how a was provided. Clearing keeps the current method.
func inputMethodOf(a transient.Attachment, current entity.InputMethod) entity.InputMethod {
	switch {
	case a.IsTransient():
		return entity.InputUpload
	case a.URL != "":
		return entity.InputURL
	default:
		return current
	}
}

func (d *Draft) releaseLesson(l entity.Lesson) {
	d.objects.Release(l.VideoURL)
	for _, r := range l.Resources {
		d.objects.Release(r.FileURL)
	}
}

// updateLessons swaps in the lesson list returned by fn, for the course when
// dayID is empty and for the given school day otherwise.
func (d *Draft) updateLessons(dayID string, fn func([]entity.Lesson) ([]entity.Lesson, error)) error {
	if dayID == "" {
		lessons, err := fn(d.lessons)
		if err != nil {
			return err
		}
		d.lessons = lessons

		return nil
	}

	i := indexOf(d.schoolDays, dayID, func(day entity.SchoolDay) string { return day.ID })
	if i < 0 {
		return domainerrors.ErrSchoolDayNotFound
	}

	day := d.schoolDays[i]
	lessons, err := fn(day.Lessons)
	if err != nil {
		return err
	}
	day.Lessons = lessons
	d.schoolDays = replaced(d.schoolDays, i, day)

	return nil
}

func (d *Draft) updateLesson(dayID, lessonID string, fn func(entity.Lesson) entity.Lesson) error {
	return d.updateLessons(dayID, func(lessons []entity.Lesson) ([]entity.Lesson, error) {
		i := indexOf(lessons, lessonID, func(l entity.Lesson) string { return l.ID })
		if i < 0 {
			return nil, domainerrors.ErrLessonNotFound
		}

		return replaced(lessons, i, fn(lessons[i])), nil
	})
}

func (d *Draft) updateResources(scope ResourceScope, fn func([]entity.Resource) ([]entity.Resource, error)) error {
	if scope.IsStandalone() {
		list, err := fn(d.resources)
		if err != nil {
			return err
		}
		d.resources = list

		return nil
	}

	var ferr error
	err := d.updateLesson(scope.DayID, scope.LessonID, func(l entity.Lesson) entity.Lesson {
		list, err := fn(l.Resources)
		if err != nil {
			ferr = err

			return l
		}
		l.Resources = list

		return l
	})
	if err != nil {
		return err
	}

	return ferr
}

func (d *Draft) updateResource(scope ResourceScope, resourceID string, fn func(entity.Resource) entity.Resource) error {
	return d.updateResources(scope, func(list []entity.Resource) ([]entity.Resource, error) {
		i := indexOf(list, resourceID, func(r entity.Resource) string { return r.ID })
		if i < 0 {
			return nil, domainerrors.ErrResourceNotFound
		}

		return replaced(list, i, fn(list[i])), nil
	})
}

func indexOf[T any](list []T, id string, key func(T) string) int {
	for i, v := range list {
		if key(v) == id {
			return i
		}
	}

	return -1
}

func appended[T any](list []T, v T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)

	return append(out, v)
}

func replaced[T any](list []T, i int, v T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[i] = v

	return out
}

func removed[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)

	return append(out, list[i+1:]...)
}

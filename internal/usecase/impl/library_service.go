package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/analytics"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// libraryService implements the LibraryUsecase interface.
type libraryService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	progressRepo repository.ProgressRepository
	certificates service.CertificateRenderer
	publisher    service.EventPublisher
	now          func() time.Time
	logger       *slog.Logger
}

// LibraryServiceParams holds dependencies for LibraryService, injected by Fx.
type LibraryServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	ProductRepo  repository.ProductRepository
	SaleRepo     repository.SaleRepository
	ProgressRepo repository.ProgressRepository
	Certificates service.CertificateRenderer
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewLibraryService is the constructor for libraryService.
func NewLibraryService(params LibraryServiceParams) usecase.LibraryUsecase {
	return &libraryService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		productRepo:  params.ProductRepo,
		saleRepo:     params.SaleRepo,
		progressRepo: params.ProgressRepo,
		certificates: params.Certificates,
		publisher:    params.Publisher,
		now:          time.Now,
		logger:       params.Logger,
	}
}

func (srv *libraryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns the user's purchased products that still exist, most recent
// purchase first.
func (srv *libraryService) List(ctx context.Context, userID string) ([]usecase.LibraryItem, error) {
	purchases, err := srv.saleRepo.ListByStudent(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list purchases")
	}

	ids := make([]string, 0, len(purchases))
	seen := make(map[string]bool, len(purchases))
	for _, s := range purchases {
		if !seen[s.ProductID] {
			seen[s.ProductID] = true
			ids = append(ids, s.ProductID)
		}
	}

	products, err := srv.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	items := make([]usecase.LibraryItem, 0, len(products))
	for _, p := range products {
		progress, err := srv.progressRepo.Get(ctx, userID, p.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load progress")
		}
		items = append(items, usecase.LibraryItem{
			Product:  p,
			Progress: percentComplete(p.Lessons(), progress.Completed),
		})
	}

	return items, nil
}

// Course returns the course player state.
func (srv *libraryService) Course(ctx context.Context, userID, productID string) (*usecase.CourseView, error) {
	product, err := srv.viewable(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	progress, err := srv.progressRepo.Get(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load progress")
	}

	return courseView(product, userID, progress, firstIncomplete(product.Lessons(), progress.Completed)), nil
}

// CompleteLesson marks lessonID done and moves on to the lesson after it.
func (srv *libraryService) CompleteLesson(ctx context.Context, userID, productID, lessonID string) (*usecase.CourseView, error) {
	product, err := srv.viewable(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	lessons := product.Lessons()
	i := indexOfLesson(lessons, lessonID)
	if i < 0 {
		return nil, domainerrors.ErrLessonNotFound
	}

	progress, err := srv.progressRepo.Get(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load progress")
	}
	if progress.Completed == nil {
		progress.Completed = make(map[string]bool)
	}
	progress.Completed[lessonID] = true
	progress.UpdatedAt = srv.now().UTC()

	if err := srv.progressRepo.Save(ctx, progress); err != nil {
		return nil, errors.Wrap(err, "failed to save progress")
	}

	current := lessonID
	if i < len(lessons)-1 {
		current = lessons[i+1].ID
	}

	srv.log(ctx).Debug("Lesson completed",
		slog.String("product_id", productID),
		slog.String("lesson_id", lessonID),
	)

	return courseView(product, userID, progress, current), nil
}

// Certificate renders the certificate as a PNG.
func (srv *libraryService) Certificate(ctx context.Context, userID, productID string) ([]byte, error) {
	product, err := srv.viewable(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	progress, err := srv.progressRepo.Get(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load progress")
	}
	if !certificateUnlocked(product, progress.Completed) {
		return nil, domainerrors.ErrCertificateLocked
	}

	student, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	var creatorName string
	if creator, err := srv.userRepo.FindByID(ctx, product.CreatorID); err == nil {
		creatorName = creator.Name
	}

	issuedAt := progress.UpdatedAt
	if issuedAt.IsZero() {
		issuedAt = srv.now()
	}

	png, err := srv.certificates.RenderCertificate(service.Certificate{
		StudentName: student.Name,
		CourseName:  product.Name,
		CreatorName: creatorName,
		IssuedAt:    issuedAt,
		Design:      product.Certificate(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render certificate")
	}

	return png, nil
}

// AddReview records the user's single review of a product.
func (srv *libraryService) AddReview(ctx context.Context, userID, productID string, input usecase.ReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domainerrors.ErrRatingRequired
	}

	reviewer, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	review := entity.Review{
		ID:       entity.NewID(),
		UserID:   userID,
		UserName: reviewer.Name,
		Rating:   input.Rating,
		Comment:  strings.TrimSpace(input.Comment),
		Date:     srv.now().UTC(),
	}

	var creatorID, productName string
	err = srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		products := f.NewProductRepository()
		product, err := products.FindByID(ctx, productID)
		if err != nil {
			return mapProductError(err)
		}
		if err := canView(ctx, f.NewSaleRepository(), userID, product); err != nil {
			return err
		}
		for _, r := range product.Reviews {
			if r.UserID == userID {
				return domainerrors.ErrReviewAlreadyExists
			}
		}

		product.Reviews = append([]entity.Review{review}, product.Reviews...)
		creatorID, productName = product.CreatorID, product.Name

		return errors.Wrap(products.Upsert(ctx, product), "failed to save review")
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Review added", slog.String("product_id", productID), slog.Int("rating", review.Rating))

	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:      service.EventReviewAdded,
		CreatorID: creatorID,
		ProductID: productID,
		ActorID:   userID,
		Attributes: map[string]string{
			"reviewer_name": reviewer.Name,
			"rating":        strconv.Itoa(review.Rating),
			"product_name":  productName,
		},
	})

	return &review, nil
}

// ClaimFree records a zero-amount purchase of a free product.
func (srv *libraryService) ClaimFree(ctx context.Context, userID, productID, referralCode string) (*entity.Sale, error) {
	if _, err := srv.userRepo.FindByID(ctx, userID); err != nil {
		return nil, mapUserError(err)
	}

	var (
		sale      entity.Sale
		product   *entity.Product
		attribute string
	)
	err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		var err error
		product, err = f.NewProductRepository().FindByID(ctx, productID)
		if err != nil {
			return mapProductError(err)
		}
		if product.Price != 0 {
			return domainerrors.ErrValidationFailed.WithMessage("Only free products can be claimed.")
		}
		if product.CreatorID == userID {
			return domainerrors.ErrConflict.WithMessage("You already own this product.")
		}

		sales := f.NewSaleRepository()
		owned, err := hasPurchased(ctx, sales, userID, productID)
		if err != nil {
			return err
		}
		if owned {
			return domainerrors.ErrConflict.WithMessage("This product is already in your library.")
		}

		sale = entity.Sale{
			ID:        entity.NewID(),
			CreatorID: product.CreatorID,
			ProductID: product.ID,
			StudentID: userID,
			Amount:    product.Price,
			Currency:  product.Currency,
			Date:      srv.now().UTC(),
		}
		if err := sales.Create(ctx, sale); err != nil {
			return errors.Wrap(err, "failed to record sale")
		}

		attribute, err = srv.attribute(ctx, f, referralCode, product, sale)

		return err
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Free product claimed", slog.String("product_id", productID), slog.String("student_id", userID))

	attrs := map[string]string{"product_name": product.Name}
	if attribute != "" {
		attrs["affiliate_id"] = attribute
	}
	publishStoreEvent(ctx, srv.publisher, srv.log(ctx), &service.StoreEvent{
		Type:       service.EventSaleRecorded,
		CreatorID:  product.CreatorID,
		ProductID:  product.ID,
		ActorID:    userID,
		Attributes: attrs,
	})

	return &sale, nil
}

// attribute credits the sale to the referring affiliate when the creator runs
// a program. It returns the credited affiliate id.
func (srv *libraryService) attribute(ctx context.Context, f repository.RepositoryFactory, referralCode string, product *entity.Product, sale entity.Sale) (string, error) {
	if referralCode == "" {
		return "", nil
	}

	users := f.NewUserRepository()
	if _, err := users.FindByAffiliateID(ctx, referralCode); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil
		}

		return "", errors.Wrap(err, "failed to find affiliate")
	}

	creator, err := users.FindByID(ctx, product.CreatorID)
	if err != nil {
		return "", mapUserError(err)
	}
	rate := creator.CreatorProfile.CommissionRate()
	if rate <= 0 {
		return "", nil
	}

	err = f.NewAffiliateRepository().RecordSale(ctx, entity.AffiliateSale{
		ID:               entity.NewID(),
		AffiliateID:      referralCode,
		ProductID:        product.ID,
		SaleAmount:       sale.Amount,
		CommissionAmount: analytics.Commission(sale.Amount, rate),
		Currency:         sale.Currency,
		Date:             sale.Date,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to record affiliate sale")
	}

	return referralCode, nil
}

// viewable loads a product the user may open in the player.
func (srv *libraryService) viewable(ctx context.Context, userID, productID string) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductError(err)
	}
	if err := canView(ctx, srv.saleRepo, userID, product); err != nil {
		return nil, err
	}

	return product, nil
}

func courseView(product *entity.Product, userID string, progress *entity.CourseProgress, current string) *usecase.CourseView {
	lessons := product.Lessons()
	if lessons == nil {
		lessons = []entity.Lesson{}
	}

	completed := make([]string, 0, len(progress.Completed))
	for _, l := range lessons {
		if progress.Completed[l.ID] {
			completed = append(completed, l.ID)
		}
	}

	reviewed := false
	for _, r := range product.Reviews {
		if r.UserID == userID {
			reviewed = true

			break
		}
	}

	return &usecase.CourseView{
		Product:             product,
		Lessons:             lessons,
		Completed:           completed,
		CurrentLessonID:     current,
		Progress:            percentComplete(lessons, progress.Completed),
		CertificateUnlocked: certificateUnlocked(product, progress.Completed),
		HasReviewed:         reviewed,
	}
}

// percentComplete is the rounded-down share of lessons completed.
func percentComplete(lessons []entity.Lesson, completed map[string]bool) int {
	if len(lessons) == 0 {
		return 0
	}

	done := 0
	for _, l := range lessons {
		if completed[l.ID] {
			done++
		}
	}

	return done * 100 / len(lessons)
}

// certificateUnlocked applies the player rules: memberships offer the
// certificate at once, lesson-based products once every lesson is done.
func certificateUnlocked(product *entity.Product, completed map[string]bool) bool {
	if !product.CertificateEnabled {
		return false
	}

	switch product.Type() {
	case entity.ProductMembership:
		return true
	case entity.ProductCourse, entity.ProductSchool:
		for _, l := range product.Lessons() {
			if !completed[l.ID] {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func firstIncomplete(lessons []entity.Lesson, completed map[string]bool) string {
	for _, l := range lessons {
		if !completed[l.ID] {
			return l.ID
		}
	}
	if len(lessons) > 0 {
		return lessons[0].ID
	}

	return ""
}

func indexOfLesson(lessons []entity.Lesson, id string) int {
	for i, l := range lessons {
		if l.ID == id {
			return i
		}
	}

	return -1
}

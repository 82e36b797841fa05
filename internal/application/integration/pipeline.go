package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// errNothingToDo marks a stage that had no work for this run
	errNothingToDo = errors.New("nothing to do")
	// errNotLinked ends an update pipeline when auto-link found no remote product
	errNotLinked = errors.New("product is not linked to the platform")
)

// platformRun is the state threaded through the stages of one platform
type platformRun struct {
	storefront integration.Storefront
	caps       integration.Capabilities
	product    *catalog.Product
	listing    *integration.Listing
	changes    catalog.ProductChanges
	remoteID   string
	remote     *integration.RemoteProduct
	locations  *locationResolver
}

func (r *platformRun) platform() integration.PlatformCode {
	return r.storefront.PlatformCode()
}

// pipelineStage is one step of a platform pipeline
type pipelineStage struct {
	name integration.Stage
	// when reports whether the stage applies; nil means always
	when func(*platformRun) bool
	// abort ends the platform pipeline when the stage fails
	abort bool
	// local stages touch the local store, so their errors are not adapter errors
	local bool
	run   func(context.Context, *platformRun) error
}

// runPipeline executes stages in order. Failures are recorded and logged; only a failing
// abort stage stops the pipeline. Nothing here is returned to the caller as an error.
func (s *SyncService) runPipeline(ctx context.Context, run *platformRun, stages []pipelineStage) PlatformOutcome {
	platform := run.platform()
	outcome := PlatformOutcome{Platform: platform}
	log := s.logger.With(
		zap.String("platform", platform.String()),
		zap.String("product_id", run.product.ID.String()),
	)

	for _, st := range stages {
		if st.when != nil && !st.when(run) {
			continue
		}

		stageCtx, span := telemetry.StartSpan(ctx, "sync.stage."+string(st.name),
			telemetry.WithAttribute(telemetry.SpanAttrPlatform, platform.String()),
			telemetry.WithAttribute(telemetry.SpanAttrStage, string(st.name)),
		)
		err := st.run(stageCtx, run)

		switch {
		case errors.Is(err, errNothingToDo):
			span.End()
			s.metrics.RecordSkipped(ctx, platform.String(), string(st.name))
			outcome.Stages = append(outcome.Stages, StageReport{Stage: st.name, Skipped: true})
			continue
		case errors.Is(err, errNotLinked):
			span.End()
			s.metrics.RecordSkipped(ctx, platform.String(), string(st.name))
			outcome.Stages = append(outcome.Stages, StageReport{Stage: st.name, Skipped: true})
			outcome.Skipped = true
			return outcome
		}

		if err != nil && !st.local {
			err = integration.NewAdapterError(platform, st.name, err)
		}
		endStageSpan(span, err)
		s.metrics.RecordStage(ctx, platform.String(), string(st.name), err)
		outcome.Stages = append(outcome.Stages, StageReport{Stage: st.name, Err: err})

		if err == nil {
			continue
		}
		if st.abort {
			log.Error("Platform stage failed, skipping remaining stages",
				zap.String("stage", string(st.name)),
				zap.Error(err))
			outcome.Err = err
			return outcome
		}
		log.Warn("Platform stage failed, continuing",
			zap.String("stage", string(st.name)),
			zap.Error(err))
	}

	outcome.Mirror = run.remote
	return outcome
}

func endStageSpan(span trace.Span, err error) {
	telemetry.RecordError(span, err)
	span.End()
}

// ---------------------------------------------------------------------------
// Stage predicates
// ---------------------------------------------------------------------------

func separateInventory(r *platformRun) bool { return r.caps.SeparateInventoryOnCreate }
func publishesListing(r *platformRun) bool { return r.caps.PublishesListing }
func unlinked(r *platformRun) bool { return r.remoteID == "" }
func detailsChanged(r *platformRun) bool { return r.changes.ExternalName != nil || r.changes.Price != nil }
func quantityChanged(r *platformRun) bool { return r.changes.Quantity != nil }
func linked(r *platformRun) bool { return r.remoteID != "" }

// ---------------------------------------------------------------------------
// Create stages
// ---------------------------------------------------------------------------

func (s *SyncService) createStages() []pipelineStage {
	return []pipelineStage{
		{name: integration.StageCreate, abort: true, run: s.stageCreate},
		{name: integration.StageLink, local: true, run: s.stageLink},
		{name: integration.StageImages, run: s.stageImages},
		{name: integration.StageInventory, when: separateInventory, run: s.stageCreationInventory},
		{name: integration.StagePublish, when: publishesListing, run: s.stagePublish},
	}
}

func (s *SyncService) stageCreate(ctx context.Context, run *platformRun) error {
	remote, err := run.storefront.CreateProduct(ctx, run.product.OwnerID, run.listing)
	if err != nil {
		return err
	}
	if remote == nil || remote.ID == "" {
		return fmt.Errorf("%w: created product has no id", integration.ErrPlatformInvalidResponse)
	}
	run.remote = remote
	run.remoteID = remote.ID
	return nil
}

func (s *SyncService) stageLink(ctx context.Context, run *platformRun) error {
	previous := remoteIDOf(run.product, run.platform())
	linkRemote(run.product, run.platform(), run.remoteID)
	if err := s.products.Save(ctx, run.product); err != nil {
		linkRemote(run.product, run.platform(), previous)
		return shared.NewPersistenceError("save platform link", err)
	}
	return nil
}

func (s *SyncService) stageImages(ctx context.Context, run *platformRun) error {
	images := integration.SelectImages(run.listing.Images)
	if len(images) == 0 {
		return errNothingToDo
	}
	uploaded, err := run.storefront.UploadImages(ctx, run.product.OwnerID, run.remoteID, images)
	if err != nil {
		return fmt.Errorf("%d of %d images uploaded: %w", uploaded, len(images), err)
	}
	return nil
}

func (s *SyncService) stageCreationInventory(ctx context.Context, run *platformRun) error {
	levels := integration.CreationInventoryLevels(run.listing, run.remote)
	if len(levels) == 0 {
		return errNothingToDo
	}
	location, err := run.locations.Resolve(ctx, run.storefront, run.product.OwnerID)
	if err != nil {
		return err
	}
	return run.storefront.SetInventory(ctx, run.product.OwnerID, location, levels)
}

func (s *SyncService) stagePublish(ctx context.Context, run *platformRun) error {
	return run.storefront.Publish(ctx, run.product.OwnerID, run.remoteID)
}

// ---------------------------------------------------------------------------
// Update stages
// ---------------------------------------------------------------------------

func (s *SyncService) updateStages() []pipelineStage {
	return []pipelineStage{
		{name: integration.StageAutoLink, when: unlinked, abort: true, run: s.stageAutoLink},
		{name: integration.StageUpdate, when: detailsChanged, run: s.stageUpdateDetails},
		{name: integration.StageInventory, when: quantityChanged, run: s.stageUpdateQuantity},
	}
}

func (s *SyncService) stageAutoLink(ctx context.Context, run *platformRun) error {
	id, ok := s.linker.Resolve(ctx, run.product, run.storefront)
	if !ok {
		return errNotLinked
	}
	run.remoteID = id
	return nil
}

func (s *SyncService) stageUpdateDetails(ctx context.Context, run *platformRun) error {
	patch := integration.ProductPatch{
		Title: run.changes.ExternalName,
		Price: run.changes.Price,
	}
	remote, err := run.storefront.UpdateProduct(ctx, run.product.OwnerID, run.remoteID, patch)
	if err != nil {
		return err
	}
	run.remote = remote
	return nil
}

// stageUpdateQuantity sets stock through the inventory API. It never touches title or price.
func (s *SyncService) stageUpdateQuantity(ctx context.Context, run *platformRun) error {
	remote, err := pushQuantity(ctx, run.storefront, run.product.OwnerID, run.remoteID, run.remote, *run.changes.Quantity, run.locations)
	if err != nil {
		return err
	}
	if run.remote == nil {
		run.remote = remote
	}
	return nil
}

// pushQuantity sets the stock of the first variant of a remote product. known may carry
// the product from an earlier call of the same operation; without variants it is fetched.
// Platforms that do not need a separate inventory call on create fall back to product-level
// stock when the product has no variants. Platforms with catalog inventory write stock
// without a location when the store has none.
func pushQuantity(
	ctx context.Context,
	sf integration.Storefront,
	ownerID uuid.UUID,
	remoteID string,
	known *integration.RemoteProduct,
	quantity int,
	locations *locationResolver,
) (*integration.RemoteProduct, error) {
	remote := known
	if remote == nil || len(remote.Variants) == 0 {
		fetched, err := sf.GetProduct(ctx, ownerID, remoteID)
		if err != nil {
			return nil, err
		}
		remote = fetched
	}

	level, err := integration.QuantityLevel(remote, quantity)
	if errors.Is(err, integration.ErrRemoteProductNoVariant) && !sf.Capabilities().SeparateInventoryOnCreate {
		level = integration.InventoryLevel{ProductID: remoteID, Available: quantity}
	} else if err != nil {
		return nil, err
	}

	location, err := locations.Resolve(ctx, sf, ownerID)
	if errors.Is(err, integration.ErrNoInventoryLocation) && sf.Capabilities().CatalogInventory {
		location = ""
	} else if err != nil {
		return nil, err
	}
	if err := sf.SetInventory(ctx, ownerID, location, []integration.InventoryLevel{level}); err != nil {
		return nil, err
	}
	return remote, nil
}

// ---------------------------------------------------------------------------
// Delete stages
// ---------------------------------------------------------------------------

func (s *SyncService) deleteStages() []pipelineStage {
	return []pipelineStage{
		{name: integration.StageDelete, when: linked, run: s.stageDelete},
	}
}

func (s *SyncService) stageDelete(ctx context.Context, run *platformRun) error {
	return run.storefront.DeleteProduct(ctx, run.product.OwnerID, run.remoteID)
}

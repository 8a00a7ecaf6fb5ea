package figdex

import (
	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	figureuc "github.com/kailas-cloud/figdex/internal/usecase/figure"
	healthuc "github.com/kailas-cloud/figdex/internal/usecase/health"
)

type (
	// Figure is a collectible owned by a single user.
	Figure = figure.Figure
	// CompanyRole links a company to a figure.
	CompanyRole = figure.CompanyRole
	// ArtistRole links an artist to a figure.
	ArtistRole = figure.ArtistRole
	// Release is one release of a figure.
	Release = figure.Release

	// Record is one ranked search hit.
	Record = result.Record
	// Page is caller-supplied pagination for partial search.
	Page = request.Page
	// Limits bounds search page sizes.
	Limits = request.Limits

	// WriteResult reports a stored figure and whether its index entry is current.
	WriteResult = figureuc.WriteResult
	// ResyncResult summarizes a resync run.
	ResyncResult = figureuc.ResyncResult
	// HealthReport is the aggregate health of the primary store and the index.
	HealthReport = healthuc.Report
)

// Errors returned by Client methods; match with errors.Is.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrInvalidFigure = domain.ErrInvalidFigure
	ErrInvalidQuery  = domain.ErrInvalidQuery
	ErrOwnerRequired = domain.ErrOwnerRequired
	ErrConflict      = domain.ErrConflict
)

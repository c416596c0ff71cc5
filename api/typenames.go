// Package api exposes the type-name formatter and parser as RPC endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/broady/tyname"
	"github.com/broady/tyname/ir"
	"github.com/broady/tyname/rpc"
	"golang.org/x/sync/errgroup"
)

// ServiceName is the RPC service the endpoints are registered on.
const ServiceName = "TypeNames"

// DefaultBatchLimit bounds the goroutines of one FormatBatch call.
const DefaultBatchLimit = 8

// TypeNames implements the TypeNames service.
type TypeNames struct {
	// DefaultMode is used when a request has no mode.
	DefaultMode tyname.Mode

	// BatchLimit bounds concurrent formatting in FormatBatch. Values below
	// 1 mean DefaultBatchLimit.
	BatchLimit int
}

// New returns a TypeNames service that defaults to assembly-qualified names.
func New() *TypeNames {
	return &TypeNames{DefaultMode: tyname.AssemblyQualified, BatchLimit: DefaultBatchLimit}
}

// Register adds the endpoints to app.
func (s *TypeNames) Register(app *rpc.App) {
	svc := app.Service(ServiceName)
	svc.Register("Format", rpc.Exec(s.Format))
	svc.Register("FormatBatch", rpc.Exec(s.FormatBatch))
	svc.Register("Parse", rpc.Query(s.Parse).CacheControl(time.Hour))
	svc.Register("Lint", rpc.Exec(s.Lint))
}

// Format renders one descriptor.
func (s *TypeNames) Format(ctx context.Context, req FormatRequest) (FormatResponse, error) {
	mode, err := s.mode(req.Mode)
	if err != nil {
		return FormatResponse{}, err
	}
	if err := validateDescriptor(req.Type.Type); err != nil {
		return FormatResponse{}, err
	}
	return formatOne(req.Type.Type, mode), nil
}

// FormatBatch renders many descriptors concurrently. The whole batch fails
// if any descriptor is invalid.
func (s *TypeNames) FormatBatch(ctx context.Context, req FormatBatchRequest) (FormatBatchResponse, error) {
	mode, err := s.mode(req.Mode)
	if err != nil {
		return FormatBatchResponse{}, err
	}
	for i, v := range req.Types {
		if err := validateDescriptor(v.Type); err != nil {
			var rpcErr *rpc.Error
			if errors.As(err, &rpcErr) {
				return FormatBatchResponse{}, rpcErr.WithDetail("index", i)
			}
			return FormatBatchResponse{}, err
		}
	}

	results := make([]FormatResponse, len(req.Types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit())
	for i, v := range req.Types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatOne(v.Type, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FormatBatchResponse{}, err
	}
	return FormatBatchResponse{Results: results}, nil
}

// Parse reads a type name and returns its descriptor and canonical form.
func (s *TypeNames) Parse(ctx context.Context, req ParseRequest) (ParseResponse, error) {
	mode, err := s.mode(req.Mode)
	if err != nil {
		return ParseResponse{}, err
	}
	d, err := tyname.Parse(req.Name)
	if err != nil {
		var perr *tyname.ParseError
		if errors.As(err, &perr) {
			return ParseResponse{}, rpc.NewError(rpc.CodeInvalidArgument, perr.Error()).
				WithDetail("offset", perr.Offset)
		}
		return ParseResponse{}, err
	}
	name, ok := tyname.Format(d, mode)
	return ParseResponse{Type: ir.Value{Type: d}, Name: name, OK: ok}, nil
}

// Lint reports contract violations, or round-trip warnings when there are none.
func (s *TypeNames) Lint(ctx context.Context, req LintRequest) (LintResponse, error) {
	res := LintResponse{Warnings: []Warning{}, Errors: []Issue{}}
	errs := ir.Validate(req.Type.Type)
	if len(errs) == 0 {
		res.Warnings = toWarnings(ir.Lint(req.Type.Type))
		return res, nil
	}
	for _, err := range errs {
		var verr *ir.ValidationError
		if errors.As(err, &verr) {
			res.Errors = append(res.Errors, Issue{Code: verr.Code, Message: verr.Message})
		}
	}
	return res, nil
}

func (s *TypeNames) mode(text string) (tyname.Mode, error) {
	if text == "" {
		return s.DefaultMode, nil
	}
	m, err := tyname.ParseMode(text)
	if err != nil {
		return 0, rpc.NewError(rpc.CodeInvalidArgument, err.Error()).WithDetail("mode", text)
	}
	return m, nil
}

func (s *TypeNames) batchLimit() int {
	if s.BatchLimit < 1 {
		return DefaultBatchLimit
	}
	return s.BatchLimit
}

// validateDescriptor turns contract violations into one invalid_argument
// error with a detail per violation code.
func validateDescriptor(d ir.TypeDescriptor) error {
	errs := ir.Validate(d)
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]any, len(errs))
	for _, err := range errs {
		var verr *ir.ValidationError
		if errors.As(err, &verr) {
			details[verr.Code] = verr.Message
		}
	}
	msg := errs[0].Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return rpc.NewError(rpc.CodeInvalidArgument, "invalid descriptor: "+msg).WithDetails(details)
}

func formatOne(d ir.TypeDescriptor, mode tyname.Mode) FormatResponse {
	name, ok := tyname.Format(d, mode)
	return FormatResponse{Name: name, OK: ok, Warnings: toWarnings(ir.Lint(d))}
}

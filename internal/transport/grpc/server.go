package grpc_server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/logging"
)

// CourseReader is the read side of the course use case.
type CourseReader interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	List(ctx context.Context, sess *domain.Session, includeCompleted bool) ([]domain.Course, error)
}

// CatalogService exposes the course catalog read-only. It never sees a
// session, so every course is listed.
type CatalogService struct {
	courses CourseReader
}

func NewCatalogService(courses CourseReader) *CatalogService {
	return &CatalogService{courses: courses}
}

func (s *CatalogService) ListCourses(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	courses, err := s.courses.List(ctx, nil, true)
	if err != nil {
		return nil, toStatus(err)
	}

	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(courses))}
	for _, c := range courses {
		st, err := courseStruct(c)
		if err != nil {
			return nil, status.Error(codes.Internal, "encode course")
		}
		out.Values = append(out.Values, structpb.NewStructValue(st))
	}
	return out, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid course id")
	}

	c, err := s.courses.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := courseStruct(*c)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode course")
	}
	return st, nil
}

func courseStruct(c domain.Course) (*structpb.Struct, error) {
	var createdBy any
	if c.CreatedBy != nil {
		createdBy = c.CreatedBy.String()
	}
	return structpb.NewStruct(map[string]any{
		"id":          c.ID.String(),
		"title":       c.Title,
		"description": c.Description,
		"difficulty":  c.Difficulty,
		"html_code":   c.HTMLCode,
		"css_code":    c.CSSCode,
		"js_code":     c.JSCode,
		"show_css":    c.ShowCSS,
		"show_js":     c.ShowJS,
		"created_by":  createdBy,
		"created_at":  c.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrCourseNotFound):
		return status.Error(codes.NotFound, "course not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// UnaryLogging logs every call with its status code and latency.
func UnaryLogging(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument:
			log.Info(ctx, "grpc request", args...)
		default:
			log.Error(ctx, "grpc request", append(args, "error", err)...)
		}
		return resp, err
	}
}

// Server bundles the catalog, the health service and reflection.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func NewServer(catalog *CatalogService, log logging.Logger) *Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLogging(log.With("component", "grpc"))))
	RegisterCatalogServer(s, catalog)

	hs := health.NewServer()
	hs.SetServingStatus(CatalogServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &Server{grpc: s, health: hs}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// GracefulStop reports NOT_SERVING, then drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

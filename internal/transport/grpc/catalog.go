package grpc_server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The catalog service speaks only protobuf well-known types, so it needs no
// generated code. The descriptor below is what protoc-gen-go-grpc would emit
// for:
//
//	service CatalogService {
//	  rpc ListCourses(google.protobuf.Empty) returns (google.protobuf.ListValue);
//	  rpc GetCourse(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
const CatalogServiceName = "codelearn.catalog.v1.CatalogService"

const (
	listCoursesMethod = "/" + CatalogServiceName + "/ListCourses"
	getCourseMethod   = "/" + CatalogServiceName + "/GetCourse"
)

type CatalogServer interface {
	ListCourses(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetCourse(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCourses", Handler: listCoursesHandler},
		{MethodName: "GetCourse", Handler: getCourseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codelearn/catalog/v1/catalog.proto",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func listCoursesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListCourses(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCoursesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).ListCourses(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getCourseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetCourse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCourseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetCourse(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogClient is the client side of CatalogService.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListCourses(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listCoursesMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetCourse(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCourseMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

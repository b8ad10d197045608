// Package grpcstatus carries errorx errors across gRPC boundaries.
//
// ToStatus maps the HTTP status of an error onto a gRPC code and attaches the
// serialized error as a google.protobuf.Struct detail. FromStatus restores it
// on the other side, so name, code, metadata and the chain survive the hop.
package grpcstatus

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/shiwano/errorx"
)

var httpToGRPC = map[int]codes.Code{
	http.StatusBadRequest:            codes.InvalidArgument,
	http.StatusUnauthorized:          codes.Unauthenticated,
	http.StatusForbidden:             codes.PermissionDenied,
	http.StatusNotFound:              codes.NotFound,
	http.StatusMethodNotAllowed:      codes.Unimplemented,
	http.StatusRequestTimeout:        codes.DeadlineExceeded,
	http.StatusConflict:              codes.AlreadyExists,
	http.StatusGone:                  codes.NotFound,
	http.StatusPreconditionFailed:    codes.FailedPrecondition,
	http.StatusRequestEntityTooLarge: codes.ResourceExhausted,
	http.StatusUnprocessableEntity:   codes.InvalidArgument,
	http.StatusTooEarly:              codes.FailedPrecondition,
	http.StatusTooManyRequests:       codes.ResourceExhausted,
	499:                              codes.Canceled, // Client closed request.
	http.StatusInternalServerError:   codes.Internal,
	http.StatusNotImplemented:        codes.Unimplemented,
	http.StatusBadGateway:            codes.Unavailable,
	http.StatusServiceUnavailable:    codes.Unavailable,
	http.StatusGatewayTimeout:        codes.DeadlineExceeded,
}

var grpcToHTTP = map[codes.Code]int{
	codes.OK:                 http.StatusOK,
	codes.Canceled:           499,
	codes.Unknown:            http.StatusInternalServerError,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Aborted:            http.StatusConflict,
	codes.OutOfRange:         http.StatusBadRequest,
	codes.Unimplemented:      http.StatusNotImplemented,
	codes.Internal:           http.StatusInternalServerError,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DataLoss:           http.StatusInternalServerError,
	codes.Unauthenticated:    http.StatusUnauthorized,
}

// CodeFromHTTP maps an HTTP status onto a gRPC code.
// Unlisted 4xx statuses map to FailedPrecondition, everything else to Unknown
// or Internal.
func CodeFromHTTP(httpStatus int) codes.Code {
	if c, ok := httpToGRPC[httpStatus]; ok {
		return c
	}
	switch {
	case httpStatus >= 400 && httpStatus < 500:
		return codes.FailedPrecondition
	case httpStatus >= 500:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// HTTPFromCode maps a gRPC code onto an HTTP status.
func HTTPFromCode(c codes.Code) int {
	if s, ok := grpcToHTTP[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ToStatus converts err into a gRPC status.
// The serialized error is attached as a structpb.Struct detail. If the
// detail cannot be attached, the plain status is returned.
func ToStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if st, ok := status.FromError(err); ok && !isErrorX(err) {
		return st
	}

	e := errorx.ToErrorX(err)
	base := status.New(CodeFromHTTP(e.HTTPStatus()), e.Message())

	data, mErr := e.MarshalJSON()
	if mErr != nil {
		return base
	}
	detail := &structpb.Struct{}
	if uErr := protojson.Unmarshal(data, detail); uErr != nil {
		return base
	}
	with, dErr := base.WithDetails(detail)
	if dErr != nil {
		return base
	}
	return with
}

// FromStatus restores an *errorx.Error from st.
// Without an errorx detail, the error is built from the gRPC code and message,
// with the mapped HTTP status and the gRPC code under the "grpcCode" metadata key.
func FromStatus(st *status.Status) *errorx.Error {
	if st == nil || st.Code() == codes.OK {
		return nil
	}
	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		data, err := protojson.Marshal(s)
		if err != nil {
			continue
		}
		if e, err := errorx.Unmarshal(data); err == nil {
			return e
		}
	}
	return errorx.NewWith(errorx.Options{
		Name:       "GRPCError",
		Code:       "GRPC_" + errorx.CodeFromName(st.Code().String()),
		Message:    st.Message(),
		HTTPStatus: HTTPFromCode(st.Code()),
		Metadata:   map[string]any{"grpcCode": st.Code().String()},
	})
}

// FromError restores an *errorx.Error from an error returned by a gRPC call.
// Errors that carry no gRPC status are converted with errorx.From.
func FromError(err error) *errorx.Error {
	if err == nil {
		return nil
	}
	if isErrorX(err) {
		return errorx.ToErrorX(err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return errorx.From(err)
	}
	return FromStatus(st)
}

// UnaryServerInterceptor converts handler errors into gRPC statuses with errorx details.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, ToStatus(err).Err()
	}
}

// UnaryClientInterceptor converts gRPC statuses back into *errorx.Error values.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if err := invoker(ctx, method, req, reply, cc, opts...); err != nil {
			return FromError(err)
		}
		return nil
	}
}

func isErrorX(err error) bool {
	switch err.(type) {
	case *errorx.Error, *errorx.AggregateError:
		return true
	}
	return false
}

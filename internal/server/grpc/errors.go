package grpc

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	var notYet *services.NotYetUnlockedError
	switch {
	case errors.As(err, &notYet):
		return status.Error(codes.FailedPrecondition,
			fmt.Sprintf("%s until %s", notYet.Error(), notYet.UnlockAt.UTC().Format(time.RFC3339)))
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorAlreadyUnlocked):
		return status.Error(codes.PermissionDenied, common.ErrorAlreadyUnlocked.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "capsule not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username already exists")
	case errors.Is(err, common.ErrorRetired):
		return status.Error(codes.OutOfRange, common.ErrorRetired.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

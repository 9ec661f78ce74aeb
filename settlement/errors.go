package settlement

import (
	"errors"
	"fmt"

	"github.com/warp/settlement-engine/generic"
)

var (
	// ErrDuplicateSettlementNumber is returned by stores when the settlement
	// number is already taken.
	ErrDuplicateSettlementNumber = fmt.Errorf("settlement number already exists: %w", generic.ErrDuplicate)

	// ErrInvalidSettlementType is returned for a type other than vacation or exit.
	ErrInvalidSettlementType = fmt.Errorf("settlement type must be vacation or exit: %w", generic.ErrInvalidInput)

	// ErrMissingData is returned when CreateSettlement is given no calculation.
	ErrMissingData = errors.New("settlement data is required")
)

func employeeNotFound(id generic.EntityID) error {
	return &generic.NotFoundError{Kind: "employee", ID: string(id)}
}

func settlementNotFound(id string) error {
	return &generic.NotFoundError{Kind: "settlement", ID: id}
}

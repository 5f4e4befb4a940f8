package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrRoomUnavailable  = errors.New("room is already booked for the requested dates")
	ErrVoucherExhausted = errors.New("voucher usage limit reached")
	ErrNotPending       = errors.New("booking is no longer pending")
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

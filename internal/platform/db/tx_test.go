package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeStarter struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (f *fakeStarter) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	var seen pgx.Tx
	err := WithTx(context.Background(), starter, func(_ context.Context, tx pgx.Tx) error {
		seen = tx
		return nil
	})
	require.NoError(t, err)
	require.Same(t, starter.tx, seen)
	require.True(t, starter.tx.committed)
	require.False(t, starter.tx.rolledBack)
	require.Equal(t, pgx.RepeatableRead, starter.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	boom := errors.New("insert failed")
	err := WithTx(context.Background(), starter, func(context.Context, pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, starter.tx.committed)
	require.True(t, starter.tx.rolledBack)
}

func TestWithTxWrapsBeginAndCommitErrors(t *testing.T) {
	down := errors.New("pool closed")
	err := WithTx(context.Background(), &fakeStarter{err: down}, func(context.Context, pgx.Tx) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	require.ErrorIs(t, err, down)

	conflict := errors.New("serialization failure")
	starter := &fakeStarter{tx: &fakeTx{commitErr: conflict}}
	err = WithTx(context.Background(), starter, func(context.Context, pgx.Tx) error { return nil })
	require.ErrorIs(t, err, conflict)
	require.True(t, starter.tx.rolledBack)
}

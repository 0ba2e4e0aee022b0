package main

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore/mocks"
)

func useStore(t *testing.T, store objectstore.Store, got *config.StoreConfig) {
	t.Helper()
	old := openStore
	t.Cleanup(func() { openStore = old })
	openStore = func(_ context.Context, cfg config.StoreConfig) (objectstore.Store, io.Closer, error) {
		if got != nil {
			*got = cfg
		}
		return store, nil, nil
	}
}

func setTarget(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvBucket, "team-snapshots")
	t.Setenv(config.EnvRegion, "eu-central-1")
}

func TestHandlerReadsTargetFromEnv(t *testing.T) {
	t.Setenv(config.EnvBucket, "team-snapshots")
	t.Setenv(config.EnvRegion, "eu-central-1")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any(), gomock.Any()).Return(&objectstore.ListPage{}, nil)

	var got config.StoreConfig
	useStore(t, store, &got)

	report, err := clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "team-snapshots", got.Bucket)
	assert.Equal(t, "eu-central-1", got.Region)
	assert.Empty(t, report.Artifacts)
}

func TestHandlerRefusesMissingTarget(t *testing.T) {
	for _, name := range []string{config.EnvBucket, config.EnvRegion} {
		t.Run(name, func(t *testing.T) {
			setTarget(t)
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))

			opened := false
			old := openStore
			t.Cleanup(func() { openStore = old })
			openStore = func(context.Context, config.StoreConfig) (objectstore.Store, io.Closer, error) {
				opened = true
				return nil, nil, errors.New("unexpected open")
			}

			_, err := clean(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
			assert.NoError(t, handler(context.Background()))
			assert.False(t, opened, "store opened without a configured target")
		})
	}
}

func TestHandlerSwallowsCleanErrors(t *testing.T) {
	setTarget(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))
	useStore(t, store, nil)

	_, err := clean(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	store.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))
	assert.NoError(t, handler(context.Background()))
}

func TestHandlerSwallowsEnvErrors(t *testing.T) {
	setTarget(t)
	t.Setenv("DRY_RUN", "sometimes")
	useStore(t, nil, nil)

	_, err := clean(context.Background())
	require.Error(t, err)
	assert.NoError(t, handler(context.Background()))
}

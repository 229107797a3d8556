// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package plugin_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/spf13/afero"

	"github.com/hytalab/hytalib/pkg/plugin"
)

// homesPlugin is a small plugin that keeps its settings in a config store.
type homesPlugin struct {
	base       *plugin.Base
	failEnable bool
	maxHomes   int
	closed     bool
}

func (p *homesPlugin) OnEnable(context.Context) error {
	if p.failEnable {
		return errors.New("homes database unavailable")
	}
	store, err := p.base.OpenConfig("config.yml")
	if err != nil {
		return err
	}
	if err := store.SetDefault("max-homes", 3); err != nil {
		return err
	}
	p.maxHomes = store.GetIntOr("max-homes", 1)
	p.closed = false
	return nil
}

func (p *homesPlugin) OnDisable(context.Context) error {
	p.closed = true
	return nil
}

var _ = Describe("Plugin lifecycle", func() {
	var (
		ctx    context.Context
		logs   *bytes.Buffer
		fs     afero.Fs
		homes  *homesPlugin
		base   *plugin.Base
		logger *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logs = &bytes.Buffer{}
		fs = afero.NewMemMapFs()
		logger = slog.New(slog.NewTextHandler(logs, nil))
		homes = &homesPlugin{}
		base = plugin.New(homes, plugin.WithLogger(logger), plugin.WithFS(fs))
		homes.base = base
		Expect(base.Load(ctx, "Homes")).To(Succeed())
	})

	Describe("enabling", func() {
		It("runs the enable hook and reads config", func() {
			base.Enable(ctx)

			Expect(base.IsEnabled()).To(BeTrue())
			Expect(homes.maxHomes).To(Equal(3))

			raw, err := afero.ReadFile(fs, "plugins/Homes/config.yml")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal("max-homes: 3\n"))
		})

		It("keeps the plugin disabled when the hook fails", func() {
			homes.failEnable = true
			base.Enable(ctx)

			Expect(base.IsEnabled()).To(BeFalse())
			Expect(logs.String()).To(ContainSubstring("homes database unavailable"))
		})
	})

	Describe("disabling", func() {
		BeforeEach(func() {
			base.Enable(ctx)
		})

		It("runs the disable hook", func() {
			base.Disable(ctx)

			Expect(base.IsEnabled()).To(BeFalse())
			Expect(homes.closed).To(BeTrue())
		})

		It("can be re-enabled afterwards", func() {
			base.Disable(ctx)
			base.Enable(ctx)

			Expect(base.IsEnabled()).To(BeTrue())
			Expect(homes.closed).To(BeFalse())
		})
	})
})

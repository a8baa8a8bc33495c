// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

//go:build integration

package loader_test

import (
	"archive/zip"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stevedore/stevedore/internal/loader"
	"github.com/stevedore/stevedore/internal/observability"
	"github.com/stevedore/stevedore/internal/registry"
)

// writeZip creates an archive with the given entries; contents irrelevant.
func writeZip(path string, entries map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

var _ = Describe("Loader end to end", func() {
	var (
		dir     string
		base    *registry.Namespace
		metrics *observability.Metrics
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		base = registry.NewNamespace()
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	})

	newLoader := func() *loader.Loader {
		return loader.New(
			loader.WithMetrics(metrics),
			loader.WithContextFactory(func() loader.LoadContext {
				return registry.NewContext(base)
			}),
		)
	}

	It("loads every archive in the directory through isolated contexts", func() {
		Expect(writeZip(filepath.Join(dir, "a.jar"), map[string]string{
			"Foo.class":     "",
			"pkg/Bar.class": "",
			"plugin.yaml":   "name: a-plugin\nversion: 1.0.0\n",
		})).To(Succeed())
		Expect(writeZip(filepath.Join(dir, "b.jar"), map[string]string{
			"other/Baz.class": "",
		})).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "b.txt"), []byte("ignored"), 0o600)).To(Succeed())

		l := newLoader()
		l.LoadDir(dir)

		Eventually(l.Done()).Should(BeClosed())
		Expect(testutil.ToFloat64(metrics.ArchiveLoads.WithLabelValues("ok"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(metrics.EntryInits.WithLabelValues("ok"))).To(Equal(3.0))
	})

	It("swallows an unreadable archive and keeps loading the rest", func() {
		Expect(os.WriteFile(filepath.Join(dir, "corrupt.jar"), []byte("not a zip"), 0o600)).To(Succeed())
		Expect(writeZip(filepath.Join(dir, "good.jar"), map[string]string{
			"Good.class": "",
		})).To(Succeed())

		l := newLoader()
		l.LoadDir(dir)

		Eventually(l.Done()).Should(BeClosed())
		Expect(testutil.ToFloat64(metrics.ArchiveLoads.WithLabelValues("error"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(metrics.ArchiveLoads.WithLabelValues("ok"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(metrics.EntryInits.WithLabelValues("ok"))).To(Equal(1.0))
	})

	It("refuses a second scan after the first completes", func() {
		Expect(writeZip(filepath.Join(dir, "a.jar"), map[string]string{"A.class": ""})).To(Succeed())

		l := newLoader()
		l.LoadDir(dir)
		Eventually(l.Done()).Should(BeClosed())

		l.LoadDir(dir)
		Consistently(func() float64 {
			return testutil.ToFloat64(metrics.ArchiveLoads.WithLabelValues("ok"))
		}).Should(Equal(1.0))
	})
})

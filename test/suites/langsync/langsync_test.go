package test_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/loopcontext/langsync"
	"github.com/loopcontext/langsync/test"
	mock_langsync "github.com/loopcontext/langsync/test/mock"
)

const enUS = "res/langs/en-US.json"
const viVN = "res/langs/vi-VN.json"

var _ = Describe("Sync", func() {
	var root string
	var cfg langsync.Config

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "langsync-suite-*")
		Expect(err).NotTo(HaveOccurred())

		err = test.Tree{
			"src/main/MainForm.cs": `
this.Text = LangManager.GetString("MainForm_FormTitle", "QuickWinstall");
clearBtn.Text = LangManager.GetString("MainForm_ClearButton", "Clear");
`,
			"src/main/SettingsForm.cs": `
langCombo.Items.AddRange(new string[]
{
    LangManager.GetString("SettingsForm_English", "English"),
    LangManager.GetString('SettingsForm_Vietnamese', 'Tiếng Việt')
});
clearBtn.Text = LangManager.GetString("MainForm_ClearButton", "Clear all");
`,
			enUS: `{
    "MainForm_FormTitle": "QuickWinstall",
    "MainForm_ClearButton": "Clear"
}
`,
			viVN: `{
    "MainForm_ClearButton": "Xóa"
}
`,
		}.Write(root)
		Expect(err).NotTo(HaveOccurred())

		cfg = langsync.Config{
			SourceRoot: filepath.Join(root, "src"),
			StorePaths: []string{filepath.Join(root, enUS), filepath.Join(root, viVN)},
		}
	})

	AfterEach(func() {
		Expect(os.RemoveAll(root)).To(Succeed())
	})

	It("should bind every key to its last default in traversal order", func() {
		ext, err := langsync.NewExtractor(langsync.ExtractorConfig{})
		Expect(err).NotTo(HaveOccurred())
		usages := ext.Extract(cfg.SourceRoot)
		Expect(usages.Len()).To(Equal(4))
		def, _ := usages.Get("MainForm_ClearButton")
		Expect(def).To(Equal("Clear all"))
	})

	It("should report missing keys sorted without touching the stores in report-only mode", func() {
		cfg.ReportOnly = true
		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Missing).To(Equal([]langsync.UsageRecord{
			{Key: "MainForm_FormTitle", Default: "QuickWinstall"},
			{Key: "SettingsForm_English", Default: "English"},
			{Key: "SettingsForm_Vietnamese", Default: "Tiếng Việt"},
		}))
		Expect(test.ReadString(root, viVN)).To(Equal("{\n    \"MainForm_ClearButton\": \"Xóa\"\n}\n"))
	})

	It("should add missing keys to the stores that lack them", func() {
		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Added).To(Equal(3))

		Expect(test.ReadString(root, enUS)).To(Equal(`{
    "MainForm_FormTitle": "QuickWinstall",
    "MainForm_ClearButton": "Clear",
    "SettingsForm_English": "English",
    "SettingsForm_Vietnamese": "Tiếng Việt"
}
`))
		Expect(test.ReadString(root, viVN)).To(Equal(`{
    "MainForm_ClearButton": "Xóa",
    "MainForm_FormTitle": "QuickWinstall",
    "SettingsForm_English": "English",
    "SettingsForm_Vietnamese": "Tiếng Việt"
}
`))
	})

	It("should be idempotent", func() {
		_, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())
		before := test.ReadString(root, viVN)

		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Missing).To(BeEmpty())
		Expect(test.ReadString(root, viVN)).To(Equal(before))

		var out bytes.Buffer
		_, err = report.WriteTo(&out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("No missing keys. All keys present in all 2 locale stores.\n"))
	})

	It("should force every value to the scanned default in overwrite mode", func() {
		cfg.OverwriteExisting = true
		cfg.SortOnWrite = true
		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Updated()).To(Equal(2))

		want := `{
    "MainForm_ClearButton": "Clear all",
    "MainForm_FormTitle": "QuickWinstall",
    "SettingsForm_English": "English",
    "SettingsForm_Vietnamese": "Tiếng Việt"
}
`
		Expect(test.ReadString(root, enUS)).To(Equal(want))
		Expect(test.ReadString(root, viVN)).To(Equal(want))
	})

	It("should keep going when one store cannot be written", func() {
		ctrl := gomock.NewController(GinkgoT())
		defer ctrl.Finish()
		backend := mock_langsync.NewMockBackend(ctrl)
		readOnly := errors.New("read-only file system")

		backend.EXPECT().ReadFile(cfg.StorePaths[0]).Return([]byte(`{}`), nil)
		backend.EXPECT().ReadFile(cfg.StorePaths[1]).Return(nil, fs.ErrNotExist)
		backend.EXPECT().MkdirAll(gomock.Any()).Return(nil).AnyTimes()
		backend.EXPECT().WriteFile(cfg.StorePaths[0], gomock.Any()).Return(readOnly)
		backend.EXPECT().WriteFile(cfg.StorePaths[1], gomock.Any()).Return(nil)

		cfg.Backend = backend
		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failed()).To(BeTrue())
		Expect(errors.Is(report.Stores[0].Err, readOnly)).To(BeTrue())
		Expect(report.Stores[1].Written).To(BeTrue())

		var out bytes.Buffer
		_, err = report.WriteTo(&out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("Added 4 keys to " + cfg.StorePaths[1] + "."))
		Expect(out.String()).To(ContainSubstring("Failed " + cfg.StorePaths[0]))
	})

	It("should report no usages for an empty tree", func() {
		cfg.SourceRoot = filepath.Join(root, "missing")
		report, err := langsync.Run(cfg)
		Expect(err).NotTo(HaveOccurred())

		var out bytes.Buffer
		_, err = report.WriteTo(&out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("No lookup usages found.\n"))
	})
})

var _ = Describe("Catalog", func() {
	var root string
	var catalog langsync.Catalog
	var ctx *test.MockContext

	BeforeEach(func() {
		var err error
		root, err = os.MkdirTemp("", "langsync-catalog-*")
		Expect(err).NotTo(HaveOccurred())
		err = test.Tree{
			"en-US.json": `{"SettingsForm_Title": "Settings", "MainForm_CancelButton": "Cancel"}`,
			"vi-VN.json": `{"SettingsForm_Title": "Cài đặt"}`,
		}.Write(root)
		Expect(err).NotTo(HaveOccurred())

		ctx = &test.MockContext{Ctx: context.Background()}
		catalog, err = langsync.NewCatalog(langsync.CatalogConfig{ResourcePath: root})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(root)).To(Succeed())
	})

	It("should use the default language without a context language", func() {
		Expect(catalog.GetStringWithCtx(ctx, "SettingsForm_Title", "x")).To(Equal("Settings"))
	})

	It("should return the value in the context language", func() {
		ctx.SetValue(langsync.ContextKey("language"), "vi-VN")
		Expect(catalog.GetStringWithCtx(ctx, "SettingsForm_Title", "x")).To(Equal("Cài đặt"))
	})

	It("should fall back to English for untranslated keys", func() {
		ctx.SetValue("language", "vi-VN")
		Expect(catalog.GetStringWithCtx(ctx, "MainForm_CancelButton", "x")).To(Equal("Cancel"))
	})

	It("should serve keys added by a sync after reload", func() {
		cfg := langsync.Config{StorePaths: []string{filepath.Join(root, "en-US.json"), filepath.Join(root, "vi-VN.json")}}
		usages := langsync.NewUsages()
		usages.Set("PresetsForm_Title", "Presets")
		_, err := langsync.NewReconciler(cfg).Reconcile(usages)
		Expect(err).NotTo(HaveOccurred())

		Expect(langsync.Reload(catalog)).To(Succeed())
		ctx.SetValue(langsync.ContextKey("language"), "vi-VN")
		Expect(catalog.GetStringWithCtx(ctx, "PresetsForm_Title", "")).To(Equal("Presets"))
	})
})

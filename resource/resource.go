package resource

import (
	"embed"

	"github.com/naiba/gymkit/pkg/utils"
)

//go:embed l10n
var l10nFS embed.FS

// L10nFS 内置翻译与 resource/l10n/custom 下用户自定义翻译的合集
var L10nFS *utils.HybridFS

func init() {
	var err error
	L10nFS, err = utils.NewHybridFS(l10nFS, "l10n", "resource/l10n/custom")
	if err != nil {
		panic(err)
	}
}

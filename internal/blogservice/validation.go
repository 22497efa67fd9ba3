package blogservice

import (
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(common.NotBlank(title), "title", "must be provided")
}

func validateContent(v *common.Validator, content string) {
	v.Check(common.NotBlank(content), "content", "must be provided")
}

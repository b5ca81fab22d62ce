package classifier

import (
	"github.com/m-mizutani/gollem"

	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

func (c *Classifier) ParseModelResult(raw []byte) (types.Category, int, error) {
	return c.parseModelResult(raw)
}

func ResponseSchema() *gollem.Parameter {
	return responseSchema()
}

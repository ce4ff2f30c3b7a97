package ledger

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classsync/core"
)

var (
	txTypeTag  = "txtype"
	txTypeText = "type must be one of: income, expense"
)

// InitValidators registers the ledger validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(txTypeTag, txTypeValidation)
	core.RegisterCustomTranslation(validate, translator, txTypeTag, txTypeText)
}

func txTypeValidation(fl validator.FieldLevel) bool {
	switch TxType(fl.Field().String()) {
	case TxIncome, TxExpense:
		return true
	}
	return false
}

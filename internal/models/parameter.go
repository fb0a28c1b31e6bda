package models

// Ключи именованных параметров.
const (
	ParamJokersEnabled              = "jokers.enabled"
	ParamMaxJokersPerContract       = "jokers.max_per_contract"
	ParamJokerRestrictions          = "jokers.restrictions"
	ParamPaymentDueDay              = "payments.due_day"
	ParamPickupLocationChangeNotice = "pickup_locations.change_notice_days"
	ParamDefaultNoticePeriod        = "subscriptions.default_notice_period"
)

// Parameter именованный параметр конфигурации, хранящийся в базе.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParameterKeys перечисляет все известные параметры.
var ParameterKeys = []string{
	ParamJokersEnabled,
	ParamMaxJokersPerContract,
	ParamJokerRestrictions,
	ParamPaymentDueDay,
	ParamPickupLocationChangeNotice,
	ParamDefaultNoticePeriod,
}

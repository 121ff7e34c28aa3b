package models

// All lists every billing model in dependency order, for AutoMigrate in
// tests and the sqlite dev database.
func All() []interface{} {
	return []interface{}{
		&CustomerModel{},
		&PackageModel{},
		&CouponModel{},
		&PlanModel{},
		&PlanCouponModel{},
		&GiftedCouponModel{},
		&PurchaseModel{},
		&SubscriptionModel{},
		&TransactionModel{},
		&OrderModel{},
		&ConfirmationModel{},
	}
}

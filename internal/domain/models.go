package domain

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&Room{},
		&Person{},
		&User{},
		&Vehicle{},
		&Fee{},
		&Payment{},
	}
}

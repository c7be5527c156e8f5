// Package repository contains the SQL data access layer. Each entity
// has its own repository type over a shared *sql.DB, with Tx variants
// for the operations that participate in multi-step transactions.
// Failure scenarios the handlers need to distinguish are exposed as
// sentinel error values declared next to the repository they belong to,
// such as ErrRoomNotFound or ErrFamilyNameTaken.
package repository

// Package tests holds shared test support for the intake backend.
//
//   - fixtures: in-process Sheets v4 and SMTP servers
//   - mocks: testify mocks for the storage, repository and notify interfaces
//   - integration: the HTTP surface wired to the fixtures end to end
package tests

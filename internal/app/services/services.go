package services

// Services defined in this package:
// - AuthService: admin and student login, student password changes
// - RegistrationService: registration number allocation and student registration
// - AcademicsService: the grade-save batch and academics views
// - FeeService: fee ledger appends, statements and derived balances
// - CertificateService: certificate eligibility and idempotent issuance

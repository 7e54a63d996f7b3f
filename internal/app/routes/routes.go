package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/twoem/portal/internal/app/controllers"
	"github.com/twoem/portal/internal/middleware"
	"github.com/twoem/portal/internal/pkg/auth"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	academicsController *controllers.AcademicsController,
	feeController *controllers.FeeController,
	certificateController *controllers.CertificateController,
	jwtService *auth.JWTService,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/admin/login", authController.AdminLogin)
		authGroup.POST("/student/login", authController.StudentLogin)
	}

	authenticated := v1.Group("")
	authenticated.Use(middleware.JWTAuth(jwtService))

	// --- Admin back-office routes ---
	admin := authenticated.Group("")
	admin.Use(middleware.RoleRequired(auth.RoleAdmin))
	{
		students := admin.Group("/students")
		{
			students.POST("", studentController.Register)
			students.GET("/:id", studentController.Get)
			students.PUT("/:id/active", studentController.SetActive)
			students.GET("/:id/enrollments", studentController.ListEnrollments)
			students.POST("/:id/fees", feeController.Log)
			students.GET("/:id/fees", feeController.Statement)
			students.GET("/:id/certificates", certificateController.Status)
		}

		enrollments := admin.Group("/enrollments")
		{
			enrollments.POST("", studentController.Enroll)
			enrollments.GET("/:enrollmentId/academics", academicsController.Get)
			enrollments.PUT("/:enrollmentId/academics", academicsController.Save)
		}
	}

	// --- Student portal routes ---
	me := authenticated.Group("/me")
	me.Use(middleware.RoleRequired(auth.RoleStudent))
	{
		me.GET("", studentController.Me)
		me.PUT("/password", authController.ChangePassword)
		me.GET("/academics", academicsController.My)
		me.GET("/fees", feeController.MyStatement)
		me.GET("/certificates", certificateController.MyStatus)
	}

	// Issuance is shared: admins for any enrollment, students for their own.
	authenticated.POST("/enrollments/:enrollmentId/certificate", certificateController.Issue)
}

// Package task manages background job queuing, processing, and lifecycle.
// It provides asynchronous execution of long-running operations like
// generating a project's syllabus from its study material, ensuring they
// don't block HTTP request handling and can recover from application
// restarts.
package task

package mocks

//go:generate mockery --name IndicatorStore --srcpkg github.com/aevon-lab/project-indica/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Backend --srcpkg github.com/aevon-lab/project-indica/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name ChangeLog --srcpkg github.com/aevon-lab/project-indica/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name CheckpointStore --srcpkg github.com/aevon-lab/project-indica/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Publisher --srcpkg github.com/aevon-lab/project-indica/internal/publish --output ./publish --outpkg publishmocks --with-expecter
